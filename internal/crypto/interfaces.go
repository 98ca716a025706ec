// Package crypto implements the client-side cipher used to protect records.
//
// Every record has its own random 256-bit key. That key encrypts the
// record's private payload and is itself wrapped with the key of each owner
// that is allowed to read the record (the user for spaces, a space or board
// for descendants). The user key is derived from the master password.
package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/cipher_mock.go -package=mock

// Cipher is the opaque encryption capability of the sync core. It knows
// nothing about storage, network or record types.
//
//	userKey   = DeriveKey(password, salt)
//	recordKey = GenerateKey()
//	grantKey  = WrapKey(recordKey, ownerKey)
//	body      = EncryptData(payload, recordKey)
type Cipher interface {
	// GenerateSalt returns 16 random bytes.
	GenerateSalt() ([]byte, error)

	// GenerateKey returns a fresh random 32-byte record key.
	GenerateKey() ([]byte, error)

	// DeriveKey derives the 32-byte user key from the master password with
	// Argon2id.
	DeriveKey(masterPassword string, salt []byte) []byte

	// WrapKey encrypts key with ownerKey. Output: nonce || ciphertext.
	WrapKey(key, ownerKey []byte) ([]byte, error)

	// UnwrapKey reverses WrapKey. It fails when ownerKey is wrong.
	UnwrapKey(wrapped, ownerKey []byte) ([]byte, error)

	// EncryptData serializes data to JSON and encrypts it with key.
	// Returns base64(nonce || ciphertext).
	EncryptData(data any, key []byte) (string, error)

	// DecryptData decrypts a blob produced by EncryptData and unmarshals the
	// plaintext into target.
	DecryptData(encryptedB64 string, key []byte, target any) error
}
