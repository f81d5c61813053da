package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentKey(t *testing.T) {
	key, name := DocumentKey("farmer-1", "Land Record.PDF")

	assert.True(t, strings.HasPrefix(key, "documents/farmer-1/"))
	assert.True(t, strings.HasSuffix(key, "/"+name))
	assert.True(t, strings.HasSuffix(name, ".pdf"))

	other, _ := DocumentKey("farmer-1", "Land Record.PDF")
	assert.NotEqual(t, key, other)

	_, bare := DocumentKey("farmer-1", "photo")
	assert.Len(t, bare, 36)
}

func TestDocumentOptions(t *testing.T) {
	opts := DocumentOptions("farmer-1", "bank_passbook", "passbook.jpg", "", 2048)

	assert.Equal(t, int64(2048), opts.Size)
	assert.Equal(t, "application/octet-stream", opts.ContentType)
	assert.Equal(t, map[string]string{
		MetaOriginalFilename: "passbook.jpg",
		MetaApplicantID:      "farmer-1",
		MetaDocumentType:     "bank_passbook",
	}, opts.Metadata)

	assert.Equal(t, "image/jpeg", DocumentOptions("farmer-1", "photo", "p.jpg", "image/jpeg", 1).ContentType)
}
