// Package dto decodes workflow documents written by hand or exported by other
// tools into the domain model.
package dto
