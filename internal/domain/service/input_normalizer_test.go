package service

import (
	"errors"
	"testing"

	"circles-claim-reminder/internal/domain/entity"
)

func TestInputNormalizer_Addresses(t *testing.T) {
	normalizer := NewInputNormalizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lower case hex",
			input: "0xde374ece6fa50e781e81aac78e811b33d16912c7",
			want:  "0xDE374ece6fA50e781E81Aac78e811b33D16912c7",
		},
		{
			name:  "upper case hex",
			input: "0xDE374ECE6FA50E781E81AAC78E811B33D16912C7",
			want:  "0xDE374ece6fA50e781E81Aac78e811b33D16912c7",
		},
		{
			name:  "surrounding whitespace",
			input: "  0xde374ece6fa50e781e81aac78e811b33d16912c7\n",
			want:  "0xDE374ece6fA50e781E81Aac78e811b33D16912c7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := normalizer.Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.input, err)
			}
			if id.Kind != entity.IdentifierAddress {
				t.Fatalf("expected address kind, got %s", id.Kind)
			}
			if got := id.Address.Hex(); got != tt.want {
				t.Errorf("expected checksum form %s, got %s", tt.want, got)
			}
		})
	}
}

func TestInputNormalizer_Handles(t *testing.T) {
	normalizer := NewInputNormalizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "eth suffix", input: "Alice.ETH", want: "alice.eth"},
		{name: "dotted handle", input: "bob.circles.garden", want: "bob.circles.garden"},
		{name: "trimmed", input: "  carol.eth ", want: "carol.eth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := normalizer.Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.input, err)
			}
			if id.Kind != entity.IdentifierHandle {
				t.Fatalf("expected handle kind, got %s", id.Kind)
			}
			if id.Handle != tt.want {
				t.Errorf("expected handle %q, got %q", tt.want, id.Handle)
			}
		})
	}
}

func TestInputNormalizer_Rejections(t *testing.T) {
	normalizer := NewInputNormalizer()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: ErrEmptyInput},
		{name: "only whitespace", input: "   \t", wantErr: ErrEmptyInput},
		{name: "garbage", input: "not-an-address", wantErr: ErrInvalidAddress},
		{name: "short hex", input: "0xde374ece", wantErr: ErrInvalidAddress},
		{name: "long hex", input: "0xde374ece6fa50e781e81aac78e811b33d16912c7ff", wantErr: ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizer.Normalize(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Normalize(%q): expected %v, got %v", tt.input, tt.wantErr, err)
			}
		})
	}
}
