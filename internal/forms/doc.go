// Package forms checks user input before it is sent to the backend.
//
// The checks are shallow (required fields, email shape, minimum password
// length, matching confirmations); the backend stays the authority.
package forms
