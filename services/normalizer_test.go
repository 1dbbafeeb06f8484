package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldConfusables(t *testing.T) {
	assert.Equal(t, "10345978", FoldConfusables("IO345g78"))
	assert.Equal(t, "0012589", FoldConfusables("OD1258g"))
	assert.Equal(t, "plain text", FoldConfusables("plain text"))
	assert.Equal(t, "25", FoldConfusables("zS"))
}

func TestNormalizeNationalID(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"clean 8 digits", "12345678", "12345678", true},
		{"embedded in text", "REPUBLIC OF KENYA ID NO 12345678 DOB", "12345678", true},
		{"fallback 7 digits", "id: 1234567 end", "1234567", true},
		{"fallback 9 digits", "123456789", "123456789", true},
		{"prefers exact 8 over earlier 7", "1234567 and 87654321", "87654321", true},
		{"letters only", "no digits here", "", false},
		{"too short", "123456", "", false},
		{"empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeNationalID(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeNationalIDFoldsBeforeExtract(t *testing.T) {
	got, ok := NormalizeNationalID("ID IO345g78 HOLDER")
	assert.True(t, ok)
	assert.Equal(t, "10345978", got)
}
