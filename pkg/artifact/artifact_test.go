package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/keyrx/keyrx/pkg/action"
	"github.com/keyrx/keyrx/pkg/keycode"
	"github.com/stretchr/testify/require"
)

func sampleRoot() ConfigRoot {
	return ConfigRoot{
		VersionMajor: SupportedMajor,
		VersionMinor: SupportedMinor,
		Meta:         Metadata{Name: "sample"},
		Layers: []LayerDecl{
			{ID: "base", Mapping: map[keycode.Code]action.Action{
				keycode.CapsLock: action.TapHold(keycode.Escape, keycode.LeftCtrl, 200, action.HoldOnTimeout),
				keycode.J:        action.Simple(keycode.J),
			}},
			{ID: "nav", Mapping: map[keycode.Code]action.Action{
				keycode.J: action.Simple(keycode.Left),
			}},
		},
		Aliases: []AliasDecl{{IsLock: false, Index: 0, Name: "nav-mod"}},
		Devices: []DeviceConfig{
			{
				Pattern:   DevicePattern{Kind: PatternWildcard},
				BaseLayer: 0,
				Conditionals: []ConditionalDecl{
					{ModifierIndices: []uint8{0}, LayerIndex: 1},
				},
			},
		},
		Fallback: DeviceConfig{Pattern: DevicePattern{Kind: PatternWildcard}, BaseLayer: 0},
	}
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	root := sampleRoot()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.krx")
	require.NoError(t, WriteFile(path, root))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, root.Meta.Name, loaded.Config.Meta.Name)
	require.Len(t, loaded.Lookups, 1)
	require.Contains(t, loaded.Lookups[0].Base.Mapping, keycode.CapsLock)
	require.Contains(t, loaded.Lookups[0].CoverageSet, keycode.Left)
}

func TestLoadRejectsInvalidMagic(t *testing.T) {
	root := sampleRoot()
	data, err := Encode(root)
	require.NoError(t, err)
	data[0] = 'X'

	dir := t.TempDir()
	path := filepath.Join(dir, "bad-magic.krx")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Load(path)
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestLoadRejectsVersionMismatch(t *testing.T) {
	root := sampleRoot()
	data, err := Encode(root)
	require.NoError(t, err)
	data[4] = byte(SupportedMajor + 1)
	data[5] = 0

	dir := t.TempDir()
	path := filepath.Join(dir, "bad-version.krx")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Load(path)
	require.ErrorIs(t, err, ErrVersionMismatch)
}

func TestLoadRejectsHashMismatch(t *testing.T) {
	root := sampleRoot()
	data, err := Encode(root)
	require.NoError(t, err)
	// Flip the final content byte (spec.md §8 scenario S5).
	data[len(data)-1] ^= 0xFF

	dir := t.TempDir()
	path := filepath.Join(dir, "bad-hash.krx")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Load(path)
	require.ErrorIs(t, err, ErrHashMismatch)

	// S5: subsequent load of the original file succeeds.
	origPath := filepath.Join(dir, "good.krx")
	require.NoError(t, WriteFile(origPath, root))
	_, err = Load(origPath)
	require.NoError(t, err)
}

func TestLoadRejectsTruncatedHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "truncated.krx")
	require.NoError(t, os.WriteFile(path, []byte("KRX"), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrMalformedArchive)
}

func TestForDevicePrefersMoreSpecificPattern(t *testing.T) {
	root := sampleRoot()
	root.Devices = append(root.Devices, DeviceConfig{
		Pattern:   DevicePattern{Kind: PatternSerial, Serial: "ABC123"},
		BaseLayer: 1, // nav layer as base, to make the match observable
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "multi.krx")
	require.NoError(t, WriteFile(path, root))
	loaded, err := Load(path)
	require.NoError(t, err)

	specific := loaded.ForDevice(DeviceIdentity{Serial: "ABC123"})
	require.Equal(t, loaded.Lookups[1].Base.ID, specific.Base.ID)

	generic := loaded.ForDevice(DeviceIdentity{Serial: "other"})
	require.Equal(t, loaded.Lookups[0].Base.ID, generic.Base.ID)
}

func TestValidateFlagsUndeclaredAliasAndBadLayerSwitch(t *testing.T) {
	root := sampleRoot()
	root.Layers[1].Mapping[keycode.K] = action.LayerSwitch(99, action.ToggleOnTap)
	root.Devices[0].Conditionals[0].ModifierIndices = []uint8{0, 7} // 7 undeclared

	dir := t.TempDir()
	path := filepath.Join(dir, "invalid-struct.krx")
	require.NoError(t, WriteFile(path, root))
	loaded, err := Load(path)
	require.NoError(t, err) // structurally decodable; Validate reports, doesn't block load

	findings := loaded.Validate()
	require.NotEmpty(t, findings)

	var sawAlias, sawLayer bool
	for _, f := range findings {
		if f.Message == "predicate references undeclared MD_07" {
			sawAlias = true
		}
		if f.Message == `layer "nav": LayerSwitch on K targets undefined layer index 99` {
			sawLayer = true
		}
	}
	require.True(t, sawAlias, "expected undeclared-alias finding, got %+v", findings)
	require.True(t, sawLayer, "expected bad-layer-switch finding, got %+v", findings)
}

func TestFingerprintIsStableAndDifferent(t *testing.T) {
	root := sampleRoot()
	content, err := EncodeRoot(root)
	require.NoError(t, err)

	fp1 := Fingerprint(content)
	fp2 := Fingerprint(content)
	require.Equal(t, fp1, fp2)

	root.Meta.Name = "different"
	content2, err := EncodeRoot(root)
	require.NoError(t, err)
	require.NotEqual(t, fp1, Fingerprint(content2))
}
