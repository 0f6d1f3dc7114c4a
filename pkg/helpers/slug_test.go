package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Bag of Rice (50kg)", "bag-of-rice-50kg"},
		{"  Cow  share -- Kano ", "cow-share-kano"},
		{"Rice/Beans", "rice-beans"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestUniqueSlug(t *testing.T) {
	a := UniqueSlug("Rice pool")
	b := UniqueSlug("Rice pool")
	assert.True(t, strings.HasPrefix(a, "rice-pool-"))
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(UniqueSlug("???"), "pool-"))
}

func TestGenerateETag(t *testing.T) {
	now := time.Now()
	assert.Equal(t, GenerateETag("p1", now), GenerateETag("p1", now))
	assert.NotEqual(t, GenerateETag("p1", now), GenerateETag("p1", now.Add(time.Second)))
	assert.True(t, strings.HasPrefix(ETagOf([]string{"a"}), `W/"`))
}
