package foamdict

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("testdata/settings.yaml")
	require.NoError(t, err)

	assert.True(t, cfg.MacroExpansion)
	assert.True(t, cfg.PreserveComments, "unset keys keep their defaults")
	assert.Equal(t, 5, cfg.ListLengthUnparsed)
	assert.Equal(t, 10, cfg.Write.LongListThreshold)
	assert.Equal(t, "    ", cfg.Write.Indent)
	assert.True(t, cfg.Write.Backup)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, Options{
		MacroExpansion:   true,
		PreserveComments: true,
		RawListThreshold: 5,
		DuplicateCheck:   true,
		Shape:            ShapeFull,
	}, opts)

	wopts := cfg.WriteOptions()
	assert.True(t, wopts.Backup)
	assert.Equal(t, GeneratorOptions{LongListThreshold: 10, Indent: "    "}, wopts.Generator)
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
	assert.Equal(t, DefaultGeneratorOptions(), cfg.GeneratorOptions())
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig([]byte("doMacroExpansion: [not, a, bool]"))
	assert.Error(t, err)
}

func TestConfig_Shape(t *testing.T) {
	tests := []struct {
		yaml string
		want BodyShape
	}{
		{"", ShapeFull},
		{"noHeader: true", ShapeHeaderless},
		{"noBody: true", ShapeHeaderOnly},
		{"listDict: true", ShapeList},
		{"listDictWithHeader: true", ShapeListWithHeader},
		{"boundaryDict: true", ShapeBoundary},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.yaml))
			require.NoError(t, err)
			got, err := cfg.Shape()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_ShapeConflict(t *testing.T) {
	cfg, err := ParseConfig([]byte("noHeader: true\nboundaryDict: true\n"))
	require.NoError(t, err)

	_, err = cfg.Options()
	var semErr *SemanticError
	require.ErrorAs(t, err, &semErr)
	assert.True(t, errors.Is(err, ErrShapeConflict))
}

func TestConfig_DuplicateFailImpliesCheck(t *testing.T) {
	cfg, err := ParseConfig([]byte("duplicateFail: true"))
	require.NoError(t, err)
	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.True(t, opts.DuplicateCheck)
	assert.True(t, opts.DuplicateFail)
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoCondense = true
	cfg.BoundaryDict = true
	cfg.Write.SortBoundary = true

	path := filepath.Join(t.TempDir(), "nested", "foamdict.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
