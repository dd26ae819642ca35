package main

import "testing"

func TestIsWeakSecret(t *testing.T) {
	cases := []struct {
		secret string
		weak   bool
	}{
		{secret: "fallbacksecret", weak: true},
		{secret: "short", weak: true},
		{secret: "please-change-me-before-going-live-0001", weak: true},
		{secret: "9f2c4a7e1b3d5f6a8c0e2b4d6f8a1c3e5b7d9f0a", weak: false},
	}
	for _, tc := range cases {
		if got := isWeakSecret(tc.secret); got != tc.weak {
			t.Fatalf("isWeakSecret(%q)=%v want %v", tc.secret, got, tc.weak)
		}
	}
}
