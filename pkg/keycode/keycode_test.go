package keycode

import "testing"

func TestModifierLockRangesDisjoint(t *testing.T) {
	for n := 0; n < 256; n++ {
		md := Modifier(uint8(n))
		lk := Lock(uint8(n))

		if !md.IsModifier() || md.IsLock() || md.IsPhysical() {
			t.Fatalf("Modifier(%d) = %v: wrong range classification", n, md)
		}
		if !lk.IsLock() || lk.IsModifier() || lk.IsPhysical() {
			t.Fatalf("Lock(%d) = %v: wrong range classification", n, lk)
		}
		if md.IsAlias() != true || lk.IsAlias() != true {
			t.Fatalf("alias codes must report IsAlias()")
		}
	}
}

func TestPhysicalKeysAreNeverAliases(t *testing.T) {
	for code := range physicalNames {
		if code.IsAlias() {
			t.Fatalf("%v classified as alias", code)
		}
		if !code.IsPhysical() {
			t.Fatalf("%v not classified as physical", code)
		}
	}
}

func TestExtendedBitPreservesBaseIdentity(t *testing.T) {
	ext := RightCtrl | Extended
	if !ext.IsPhysical() {
		t.Fatalf("extended physical key should still classify as physical")
	}
	if ext.IsAlias() {
		t.Fatalf("extended bit must never turn a physical key into an alias")
	}
}

func TestStringRoundTripsKnownNames(t *testing.T) {
	for code, name := range physicalNames {
		if code.String() != name {
			t.Fatalf("String() = %q, want %q", code.String(), name)
		}
		got, ok := ParseName(name)
		if !ok || got != code {
			t.Fatalf("ParseName(%q) = %v, %v; want %v, true", name, got, ok, code)
		}
	}
}

func TestAliasNameRoundTrip(t *testing.T) {
	for _, n := range []uint8{0x00, 0x01, 0xAB, 0xFF} {
		md := Modifier(n)
		got, ok := ParseName(md.String())
		if !ok || got != md {
			t.Fatalf("alias round trip failed for MD_%02X", n)
		}
	}
}

func TestNoneIsZeroValue(t *testing.T) {
	var c Code
	if c != None {
		t.Fatalf("zero value of Code must equal None")
	}
	if c.IsAlias() || c.IsPhysical() {
		t.Fatalf("None must not classify as alias or physical")
	}
}
