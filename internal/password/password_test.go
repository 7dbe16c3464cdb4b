package password

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/crypto/argon2"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() = %q, want bcrypt format", hash)
	}
	if !Verify("correct horse", hash) {
		t.Error("Verify() rejected the right password")
	}
	if Verify("wrong horse", hash) {
		t.Error("Verify() accepted the wrong password")
	}
}

func TestHash_TooLong(t *testing.T) {
	if _, err := Hash(strings.Repeat("a", 73)); err != ErrTooLong {
		t.Errorf("Hash() error = %v, want ErrTooLong", err)
	}
}

func TestVerify_Argon2id(t *testing.T) {
	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte("s3cret"), salt, 1, 8*1024, 1, 32)
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, 8*1024, 1, 1,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))

	if !Verify("s3cret", encoded) {
		t.Error("Verify() rejected the right argon2id password")
	}
	if Verify("nope", encoded) {
		t.Error("Verify() accepted the wrong argon2id password")
	}
}

func TestVerify_Malformed(t *testing.T) {
	for _, encoded := range []string{"", "plaintext", "$argon2id$broken", "$argon2id$v=19$m=x$a$b", "$2a$bad"} {
		if Verify("anything", encoded) {
			t.Errorf("Verify() accepted malformed hash %q", encoded)
		}
	}
}
