package types

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestBytes32FromHex(t *testing.T) {
	want := Bytes32{0xde, 0xad, 0xbe, 0xef}
	inputs := []string{
		"deadbeef00000000000000000000000000000000000000000000000000000000",
		"0xdeadbeef00000000000000000000000000000000000000000000000000000000",
		"DEADBEEF00000000000000000000000000000000000000000000000000000000",
	}
	for _, in := range inputs {
		got, err := Bytes32FromHex(in)
		if err != nil {
			t.Fatalf("Bytes32FromHex(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("Bytes32FromHex(%q) = %s", in, got)
		}
	}
}

func TestBytes32FromHexRejectsBadInput(t *testing.T) {
	inputs := []string{
		"",
		"0x",
		"deadbeef",
		"zzadbeef00000000000000000000000000000000000000000000000000000000",
		"deadbeef00000000000000000000000000000000000000000000000000000000ff",
	}
	for _, in := range inputs {
		if _, err := Bytes32FromHex(in); err == nil {
			t.Errorf("Bytes32FromHex(%q) accepted bad input", in)
		}
	}
}

func TestBytes32FromSlice(t *testing.T) {
	raw := make([]byte, 32)
	raw[0] = 0x01
	raw[31] = 0xff
	got, err := Bytes32FromSlice(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got[:], raw) {
		t.Errorf("round trip mismatch: %x", got)
	}
	if _, err := Bytes32FromSlice(raw[:31]); err == nil {
		t.Error("accepted 31-byte slice")
	}
}

func TestBytes32JSON(t *testing.T) {
	var in Bytes32
	in[0] = 0xab
	in[31] = 0x01
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	want := `"0xab00000000000000000000000000000000000000000000000000000000000001"`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
	var out Bytes32
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("round trip mismatch: %s", out)
	}
}

func TestBytesJSON(t *testing.T) {
	in := Bytes{0x01, 0x02, 0x03}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"0x010203"` {
		t.Errorf("marshal = %s", data)
	}
	var out Bytes
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, in) {
		t.Errorf("round trip mismatch: %x", out)
	}

	var empty Bytes
	data, err = json.Marshal(empty)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"0x"` {
		t.Errorf("empty marshal = %s", data)
	}
}
