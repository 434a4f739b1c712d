package admin

import "testing"

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		provided string
		want     bool
	}{
		{
			name:     "correct credential",
			secret:   "s3cr3t-value",
			provided: "s3cr3t-value",
			want:     true,
		},
		{
			name:     "wrong credential",
			secret:   "s3cr3t-value",
			provided: "guess",
			want:     false,
		},
		{
			name:     "prefix of secret",
			secret:   "s3cr3t-value",
			provided: "s3cr3t",
			want:     false,
		},
		{
			name:     "secret plus suffix",
			secret:   "s3cr3t-value",
			provided: "s3cr3t-value-extra",
			want:     false,
		},
		{
			name:     "case differs",
			secret:   "s3cr3t-value",
			provided: "S3CR3T-VALUE",
			want:     false,
		},
		{
			name:     "empty provided",
			secret:   "s3cr3t-value",
			provided: "",
			want:     false,
		},
		{
			name:     "empty secret rejects empty provided",
			secret:   "",
			provided: "",
			want:     false,
		},
		{
			name:     "empty secret rejects any provided",
			secret:   "",
			provided: "anything",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAuthenticator(tt.secret)
			if got := a.Authenticate(tt.provided); got != tt.want {
				t.Errorf("Authenticate(%q) with secret %q = %v, want %v",
					tt.provided, tt.secret, got, tt.want)
			}
		})
	}
}
