package gallery

import (
	"errors"
	"testing"

	"artify/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() Fields {
	return Fields{
		Title:       "Harbor at Dusk",
		Category:    "Seascape",
		Medium:      "Oil",
		Description: "Boats returning at dusk",
		Dimensions:  "40x60 cm",
		Price:       "250",
		ImageURL:    "https://img.example.com/harbor.jpg",
		Visibility:  "Private",
	}
}

func TestValidate_Valid(t *testing.T) {
	patch, err := Validate(validFields())
	require.NoError(t, err)
	assert.Equal(t, "Harbor at Dusk", patch.Title)
	assert.Equal(t, entity.Price(250), patch.Price)
	assert.Equal(t, entity.VisibilityPrivate, patch.Visibility)
}

func TestValidate_Defaults(t *testing.T) {
	f := validFields()
	f.Price = "  "
	f.Visibility = ""

	patch, err := Validate(f)
	require.NoError(t, err)
	assert.Equal(t, entity.Price(0), patch.Price)
	assert.Equal(t, entity.VisibilityPublic, patch.Visibility)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Fields)
		field  string
	}{
		{"missing title", func(f *Fields) { f.Title = "  " }, "title"},
		{"missing description", func(f *Fields) { f.Description = "" }, "description"},
		{"missing image", func(f *Fields) { f.ImageURL = "" }, "imageURL"},
		{"bad image url", func(f *Fields) { f.ImageURL = "not a url" }, "imageURL"},
		{"negative price", func(f *Fields) { f.Price = "-1" }, "price"},
		{"non numeric price", func(f *Fields) { f.Price = "cheap" }, "price"},
		{"infinite price", func(f *Fields) { f.Price = "Inf" }, "price"},
		{"NaN price", func(f *Fields) { f.Price = "NaN" }, "price"},
		{"unknown visibility", func(f *Fields) { f.Visibility = "Friends" }, "visibility"},
		{"title that is only markup", func(f *Fields) { f.Title = "<script>alert(1)</script>" }, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.modify(&f)

			_, err := Validate(f)
			require.Error(t, err)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.True(t, verrs.Has(tt.field), "expected %s error, got %v", tt.field, verrs)
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	_, err := Validate(Fields{Price: "x"})

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	for _, field := range []string{"title", "description", "imageURL", "price"} {
		assert.True(t, verrs.Has(field), field)
	}
	assert.Contains(t, err.Error(), "title is required")
}

func TestValidate_StripsMarkup(t *testing.T) {
	f := validFields()
	f.Title = "<b>Bold</b> & Bright"
	f.Description = `<img src=x onerror="alert(1)">Calm sea`

	patch, err := Validate(f)
	require.NoError(t, err)
	assert.Equal(t, "Bold & Bright", patch.Title)
	assert.Equal(t, "Calm sea", patch.Description)
}

func TestFieldsFrom_RoundTrip(t *testing.T) {
	a := entity.Artwork{
		Title:       "Fern",
		Description: "Green",
		Price:       12.5,
		ImageURL:    "https://img.example.com/fern.jpg",
		Visibility:  entity.VisibilityPublic,
	}

	patch, err := Validate(FieldsFrom(a))
	require.NoError(t, err)
	assert.Equal(t, entity.Price(12.5), patch.Price)
	assert.Equal(t, "Fern", patch.Title)
}
