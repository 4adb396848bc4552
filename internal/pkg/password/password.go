package password

import "golang.org/x/crypto/bcrypt"

// Hash returns a salted bcrypt digest of the plaintext.
func Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plain matches the stored digest.
func Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
