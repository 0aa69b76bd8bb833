package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_engine_mock.go -package=mock

// Engine is the primitive layer of the field encryption envelope. It knows
// nothing about users, sessions or storage: it turns a password and a salt
// into a key, and a string into a CipherEnvelope and back.
//
// Envelope layout (standard Base64, padded):
//
//	base64( IV (12 bytes) ‖ ciphertext ‖ GCM tag (16 bytes) )
//
// No version byte or key id is embedded, so envelopes written by earlier
// clients stay readable.
type Engine interface {
	// DeriveKey runs PBKDF2-HMAC-SHA256 over password and salt with the given
	// iteration count and returns a 256-bit AES-GCM key. The result is
	// reproducible bit-for-bit from the same inputs.
	// Returns ErrKeyDerivation for iterations below MinIterations, an empty
	// salt, or when the AEAD cannot be constructed.
	DeriveKey(password string, salt []byte, iterations int) (DerivedKey, error)

	// Encrypt seals plaintext under key with a fresh random IV and returns the
	// envelope. An empty plaintext is returned unchanged.
	Encrypt(plaintext string, key DerivedKey) (string, error)

	// Decrypt opens an envelope produced by Encrypt. Any failure (malformed
	// Base64, truncated envelope, wrong key, tampered bytes) is reported as
	// ErrAuthentication. An empty envelope is returned unchanged.
	Decrypt(envelope string, key DerivedKey) (string, error)
}
