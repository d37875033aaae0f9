package user

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	h, err := HashPassword("password1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h == "password1" {
		t.Fatalf("hash must not equal the plain text")
	}
	if !CheckPassword(h, "password1") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(h, "password2") {
		t.Fatalf("wrong password accepted")
	}
}

func TestValidatePassword(t *testing.T) {
	cases := map[string]bool{
		"password1":   true,
		"short1":      false,
		"onlyletters": false,
		"12345678":    false,
		"pässwörd9":   true,
	}
	for pw, ok := range cases {
		err := ValidatePassword(pw)
		if ok && err != nil {
			t.Fatalf("%q: unexpected error %v", pw, err)
		}
		if !ok && err == nil {
			t.Fatalf("%q: expected an error", pw)
		}
	}
}
