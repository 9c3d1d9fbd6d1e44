package tariff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/micasillero/courier/internal/errors"
)

func TestResolveHierarchy(t *testing.T) {
	tests := []struct {
		name string
		code string
		want Hierarchy
	}{
		{
			name: "standard subheading",
			code: "0101.21.00.00",
			want: Hierarchy{
				ChapterCode: "0101",
				HeadingCode: "0101.21",
				ParentCode:  "0101.00.00.00",
				Level:       2,
				IsLeaf:      true,
			},
		},
		{
			name: "three significant segments",
			code: "6402.99.90.00",
			want: Hierarchy{
				ChapterCode:     "6402",
				HeadingCode:     "6402.99",
				ParentCode:      "6402.99.00.00",
				GrandparentCode: "6402.00.00.00",
				Level:           3,
				IsLeaf:          true,
			},
		},
		{
			name: "fully significant detail code",
			code: "8517.12.00.10",
			want: Hierarchy{
				ChapterCode:     "8517",
				HeadingCode:     "8517.12",
				ParentCode:      "8517.12.00.00",
				GrandparentCode: "8517.00.00.00",
				Level:           3,
				IsLeaf:          true,
			},
		},
		{
			name: "chapter alone",
			code: "0101",
			want: Hierarchy{
				ChapterCode: "0101",
				HeadingCode: "0101",
				Level:       1,
				IsLeaf:      true,
			},
		},
		{
			name: "chapter with zero tail",
			code: "0101.00.00.00",
			want: Hierarchy{
				ChapterCode: "0101",
				HeadingCode: "0101",
				Level:       1,
				IsLeaf:      true,
			},
		},
		{
			name: "legacy two segment code",
			code: "0101.21",
			want: Hierarchy{
				ChapterCode: "0101",
				HeadingCode: "0101.21",
				Level:       2,
				IsLeaf:      true,
			},
		},
		{
			name: "short chapter is zero padded",
			code: "101.21.00.00",
			want: Hierarchy{
				ChapterCode: "0101",
				HeadingCode: "101.21",
				ParentCode:  "101.00.00.00",
				Level:       2,
				IsLeaf:      true,
			},
		},
		{
			name: "five segment code",
			code: "2208.70.10.00.11",
			want: Hierarchy{
				ChapterCode:     "2208",
				HeadingCode:     "2208.70",
				ParentCode:      "2208.70.10.00.00",
				GrandparentCode: "2208.70.00.00.00",
				Level:           4,
				IsLeaf:          true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveHierarchy(tt.code)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveHierarchy_LevelIsCapped(t *testing.T) {
	// Six significant segments would naively give level 6.
	got, err := ResolveHierarchy("2208.70.10.20.11.99")
	assert.NoError(t, err)
	assert.Equal(t, MaxHierarchyLevel, got.Level)
}

func TestResolveHierarchy_Deterministic(t *testing.T) {
	first, err := ResolveHierarchy("6402.99.90.00")
	assert.NoError(t, err)
	second, err := ResolveHierarchy("6402.99.90.00")
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveHierarchy_ParentIsShallower(t *testing.T) {
	got, err := ResolveHierarchy("6402.99.90.00")
	assert.NoError(t, err)

	parent, err := ResolveHierarchy(got.ParentCode)
	assert.NoError(t, err)
	assert.Less(t, parent.Level, got.Level)
	assert.Equal(t, got.ChapterCode, parent.ChapterCode)
}

func TestResolveHierarchy_Malformed(t *testing.T) {
	for _, code := range []string{"", "   ", "abc", "01-01.21", "0101.2a.00.00", "...", "es01"} {
		t.Run(code, func(t *testing.T) {
			_, err := ResolveHierarchy(code)
			assert.Error(t, err)
			assert.True(t, apperrors.IsMalformedCode(err))
		})
	}
}
