package internal

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

func TestMixHash(t *testing.T) {
	if MixHash(7, 100) != MixHash(7, 100) {
		t.Error("MixHash determinism failed")
	}
	if MixHash(7, 100) == MixHash(7, 200) {
		t.Error("MixHash position sensitivity failed")
	}
	if MixHash(7, 100) == MixHash(8, 100) {
		t.Error("MixHash seed sensitivity failed")
	}
}

func TestNewRand(t *testing.T) {
	rand1 := NewRand(MixHash(7, 100))
	rand2 := NewRand(MixHash(7, 100))
	for i := 0; i < 100; i++ {
		if rand1.Intn(1000) != rand2.Intn(1000) {
			t.Error("NewRand determinism failed")
		}
	}
}

func TestCompressedRoundtrip(t *testing.T) {
	dir := t.TempDir()
	contents := []byte("100\tr1\tG\n200\tr1\tC\n")
	for _, name := range []string{"plain.obs", "compressed.obs" + GzExt, "compressed.obs" + ZstExt} {
		filename := filepath.Join(dir, name)
		out, err := CreateCompressed(filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := out.Write(contents); err != nil {
			t.Fatal(err)
		}
		if err := out.Close(); err != nil {
			t.Fatal(err)
		}
		in, err := OpenCompressed(filename)
		if err != nil {
			t.Fatal(err)
		}
		read, err := ioutil.ReadAll(in)
		if err != nil {
			t.Fatal(err)
		}
		if err := in.Close(); err != nil {
			t.Fatal(err)
		}
		if string(read) != string(contents) {
			t.Error(name, "roundtrip failed")
		}
	}
}
