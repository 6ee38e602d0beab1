// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"strings"
	"testing"
)

func TestValidateUserName(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		wantErr  string // substring of error message, empty means no error expected
	}{
		{name: "simple", userName: "alice", wantErr: ""},
		{name: "with_dots", userName: "alice.smith", wantErr: ""},
		{name: "with_underscore", userName: "alice_smith", wantErr: ""},
		{name: "with_hyphen", userName: "alice-smith", wantErr: ""},
		{name: "numeric", userName: "agent42", wantErr: ""},
		{name: "max_length", userName: strings.Repeat("a", MaxNameLength), wantErr: ""},

		{name: "empty", userName: "", wantErr: "is empty"},
		{name: "one_over_max", userName: strings.Repeat("a", MaxNameLength+1), wantErr: "maximum is 128"},
		{name: "uppercase", userName: "Alice", wantErr: "invalid character"},
		{name: "space", userName: "alice bob", wantErr: "invalid character"},
		{name: "slash", userName: "alice/bob", wantErr: "invalid character"},
		{name: "colon", userName: "alice:bob", wantErr: "invalid character"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUserName(tc.userName)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateUserName(%q) = %v, want nil", tc.userName, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("ValidateUserName(%q) = %v, want error containing %q", tc.userName, err, tc.wantErr)
			}
		})
	}
}

func TestValidateDeviceName(t *testing.T) {
	if err := ValidateDeviceName("laptop"); err != nil {
		t.Fatalf("ValidateDeviceName(laptop) = %v, want nil", err)
	}
	if err := ValidateDeviceName(""); err == nil {
		t.Fatal("ValidateDeviceName(\"\") should reject an empty name")
	}
}
