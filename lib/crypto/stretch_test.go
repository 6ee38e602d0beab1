// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"bytes"
	"testing"
)

func TestStretchDeterministic(t *testing.T) {
	password := []byte("correct horse battery staple")
	salt := bytes.Repeat([]byte{0x42}, StretchSaltSize)
	params := DefaultStretchParams()

	first, err := Stretch(password, salt, params)
	if err != nil {
		t.Fatalf("Stretch: %v", err)
	}
	defer first.Close()

	second, err := Stretch(password, salt, params)
	if err != nil {
		t.Fatalf("Stretch: %v", err)
	}
	defer second.Close()

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatal("same password and salt produced different stretched keys")
	}
}

func TestStretchDifferentSaltsDiffer(t *testing.T) {
	password := []byte("correct horse battery staple")
	params := DefaultStretchParams()

	firstSalt := bytes.Repeat([]byte{0x01}, StretchSaltSize)
	secondSalt := bytes.Repeat([]byte{0x02}, StretchSaltSize)

	first, err := Stretch(password, firstSalt, params)
	if err != nil {
		t.Fatalf("Stretch: %v", err)
	}
	defer first.Close()

	second, err := Stretch(password, secondSalt, params)
	if err != nil {
		t.Fatalf("Stretch: %v", err)
	}
	defer second.Close()

	if bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatal("different salts produced the same stretched key")
	}
}

func TestStretchRejectsEmptySalt(t *testing.T) {
	_, err := Stretch([]byte("password"), nil, DefaultStretchParams())
	if err == nil {
		t.Fatal("Stretch accepted an empty salt")
	}
}
