package keystore

import (
	"reflect"

	"github.com/MKhiriev/go-field-crypt/internal/crypto"
)

// keyBytes reads the unexported raw bytes of a derived key.
func keyBytes(key crypto.DerivedKey) []byte {
	return reflect.ValueOf(key).FieldByName("raw").Bytes()
}
