package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/crypto/argon2"
)

// File format constants
const (
	// magicHeader identifies braid keystore files
	magicHeader = "BRAID"
	// formatVersion is the current file format version
	formatVersion = byte(0x01)
	// saltLength is the length of the Argon2id salt
	saltLength = 16
	// nonceLength is the AES-GCM nonce length
	nonceLength = 12
)

// Argon2id parameters (OWASP recommended)
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
)

// MasterKeySource supplies master key material for the keystore.
type MasterKeySource interface {
	GetMasterKey() ([]byte, error)
}

// machineKeySource derives master key material from hostname and user.
// SECURITY NOTE: hostname and user are guessable; this protects keys at
// rest from casual file reads, not from an attacker running as the same
// user. Embedders with stronger requirements should supply their own
// MasterKeySource.
type machineKeySource struct{}

func (machineKeySource) GetMasterKey() ([]byte, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}

	material := hostname + ":" + username + ":braid-keystore"

	// SHA-256 produces uniform 32-byte master key material
	hash := sha256.Sum256([]byte(material))
	return hash[:], nil
}

// StaticKeySource returns a MasterKeySource backed by a fixed byte slice.
// Useful for tests and for embedders that manage key material themselves.
func StaticKeySource(key []byte) MasterKeySource {
	return staticKeySource(key)
}

type staticKeySource []byte

func (s staticKeySource) GetMasterKey() ([]byte, error) {
	if len(s) == 0 {
		return nil, errors.New("empty master key")
	}
	out := make([]byte, len(s))
	copy(out, s)
	return out, nil
}

// FileKeystore implements Keystore using encrypted file storage.
// Keys are stored in a JSON map encrypted with AES-256-GCM, with the
// per-file encryption key derived from the master key via Argon2id.
type FileKeystore struct {
	path      string
	masterKey []byte
	mu        sync.RWMutex
}

// NewFileKeystore creates a new file-based keystore at the given path.
// The master key is derived from machine-specific data.
func NewFileKeystore(path string) (*FileKeystore, error) {
	return NewFileKeystoreWithSource(path, machineKeySource{})
}

// NewFileKeystoreWithSource creates a new file-based keystore with a
// caller-supplied master key source.
func NewFileKeystoreWithSource(path string, source MasterKeySource) (*FileKeystore, error) {
	masterKey, err := source.GetMasterKey()
	if err != nil {
		return nil, err
	}

	return &FileKeystore{
		path:      path,
		masterKey: masterKey,
	}, nil
}

// Set stores a key-value pair.
func (f *FileKeystore) Set(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.loadData()
	if err != nil {
		return err
	}

	data[name] = value
	return f.saveData(data)
}

// Get retrieves a value by name.
func (f *FileKeystore) Get(name string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := f.loadData()
	if err != nil {
		return "", err
	}

	value, ok := data[name]
	if !ok {
		return "", &ErrKeyNotFound{Name: name}
	}

	return value, nil
}

// Delete removes a key by name.
func (f *FileKeystore) Delete(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.loadData()
	if err != nil {
		return err
	}

	if _, ok := data[name]; !ok {
		return &ErrKeyNotFound{Name: name}
	}

	delete(data, name)
	return f.saveData(data)
}

// List returns all stored key names.
func (f *FileKeystore) List() ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := f.loadData()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// loadData reads and decrypts the keystore file.
func (f *FileKeystore) loadData() (map[string]string, error) {
	data := make(map[string]string)

	ciphertext, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, err
	}

	if len(ciphertext) == 0 {
		return data, nil
	}

	if !isKeystoreFormat(ciphertext) {
		return nil, errors.New("not a braid keystore file")
	}

	plaintext, err := f.decrypt(ciphertext)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, err
	}

	return data, nil
}

// saveData encrypts and writes the keystore file.
func (f *FileKeystore) saveData(data map[string]string) error {
	// Ensure directory exists
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	plaintext, err := json.Marshal(data)
	if err != nil {
		return err
	}

	ciphertext, err := f.encrypt(plaintext)
	if err != nil {
		return err
	}

	// Write with restrictive permissions (user only)
	return os.WriteFile(f.path, ciphertext, 0600)
}

// isKeystoreFormat checks if the ciphertext starts with the magic header
// and a known version byte.
func isKeystoreFormat(ciphertext []byte) bool {
	if len(ciphertext) < len(magicHeader)+1 {
		return false
	}
	return string(ciphertext[:len(magicHeader)]) == magicHeader && ciphertext[len(magicHeader)] == formatVersion
}

// deriveKey derives an encryption key from the master key using Argon2id.
func deriveKey(masterKey, salt []byte) []byte {
	return argon2.IDKey(masterKey, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

// encrypt encrypts data using AES-256-GCM with Argon2id key derivation.
// Format: [magic (5)] [version (1)] [salt (16)] [nonce (12)] [ciphertext]
// The full header is bound to the ciphertext as GCM additional data.
func (f *FileKeystore) encrypt(plaintext []byte) ([]byte, error) {
	// Generate random salt
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	// Derive encryption key using Argon2id
	key := deriveKey(f.masterKey, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	// Generate random nonce
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Build output: magic + version + salt + nonce + ciphertext
	header := make([]byte, 0, len(magicHeader)+1+saltLength+nonceLength)
	header = append(header, []byte(magicHeader)...)
	header = append(header, formatVersion)
	header = append(header, salt...)
	header = append(header, nonce...)

	ciphertext := gcm.Seal(nil, nonce, plaintext, header)
	return append(header, ciphertext...), nil
}

// decrypt decrypts data using AES-256-GCM with Argon2id key derivation.
func (f *FileKeystore) decrypt(ciphertext []byte) ([]byte, error) {
	headerLen := len(magicHeader) + 1 + saltLength + nonceLength
	if len(ciphertext) < headerLen {
		return nil, errors.New("ciphertext too short")
	}

	// Parse header
	offset := len(magicHeader) + 1 // Skip magic and version
	salt := ciphertext[offset : offset+saltLength]
	offset += saltLength
	nonce := ciphertext[offset : offset+nonceLength]
	offset += nonceLength
	encrypted := ciphertext[offset:]
	header := ciphertext[:offset]

	// Derive key using Argon2id
	key := deriveKey(f.masterKey, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return gcm.Open(nil, nonce, encrypted, header)
}

// Ensure FileKeystore implements Keystore
var _ Keystore = (*FileKeystore)(nil)
