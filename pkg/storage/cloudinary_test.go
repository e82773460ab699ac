package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPublicID(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712/diary/avatars/abc.webp": "diary/avatars/abc",
		"https://res.cloudinary.com/demo/image/upload/diary/avatars/abc.webp":       "diary/avatars/abc",
		"https://res.cloudinary.com/demo/image/upload/vintage/pic.png":              "vintage/pic",
		"https://example.com/static/abc.png":                                        "",
		"https://res.cloudinary.com/demo/image/upload/":                             "",
	}

	for in, want := range cases {
		assert.Equal(t, want, ExtractPublicID(in), in)
	}
}

func TestFolderJoin(t *testing.T) {
	s := &cloudinaryStorage{rootFolder: "code_diary"}
	assert.Equal(t, "code_diary/avatars", s.folder("avatars"))

	s.rootFolder = ""
	assert.Equal(t, "avatars", s.folder("avatars"))
}
