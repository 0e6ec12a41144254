// Package arch describes the 32-bit PowerPC user-mode state that the harness
// captures and compares.
//
// All bit numbers in this package use the architectural big-endian
// convention: bit 0 is the most significant bit of a 32-bit register.
//
// The condition register (CR) holds eight 4-bit fields, cr0 in bits 0-3
// through cr7 in bits 28-31, each ordered LT, GT, EQ, SO. The fixed-point
// exception register (XER) holds SO in bit 0, OV in bit 1, CA in bit 2, and
// the string transfer byte count (TBC) in bits 25-31.
package arch
