// Package secrets decrypts the CI credentials bundle.
//
// The bundle is encrypted with AES-256-CBC using a raw hex key and IV
// (the `openssl aes-256-cbc -d -K <hex> -iv <hex>` form: no salt
// header, PKCS#7 padding). Decryption failures from a wrong key
// surface as padding errors, which is the same signal openssl gives.
//
// The decrypted file is a secret scoped to one process invocation:
// it is written atomically and never exists on disk with permissions
// wider than owner-read-only.
package secrets
