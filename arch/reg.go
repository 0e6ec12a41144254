// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package arch

import (
	"iter"
	"strings"
)

// Reg is an architected user-mode register captured by a snapshot.
type Reg int

//go:generate go tool stringer -linecomment -type=Reg
const (
	REG_R0  = Reg(0)  // r0
	REG_R1  = Reg(1)  // r1
	REG_R2  = Reg(2)  // r2
	REG_R3  = Reg(3)  // r3
	REG_R4  = Reg(4)  // r4
	REG_R5  = Reg(5)  // r5
	REG_R6  = Reg(6)  // r6
	REG_R7  = Reg(7)  // r7
	REG_R8  = Reg(8)  // r8
	REG_R9  = Reg(9)  // r9
	REG_R10 = Reg(10) // r10
	REG_R11 = Reg(11) // r11
	REG_R12 = Reg(12) // r12
	REG_R13 = Reg(13) // r13
	REG_R14 = Reg(14) // r14
	REG_R15 = Reg(15) // r15
	REG_R16 = Reg(16) // r16
	REG_R17 = Reg(17) // r17
	REG_R18 = Reg(18) // r18
	REG_R19 = Reg(19) // r19
	REG_R20 = Reg(20) // r20
	REG_R21 = Reg(21) // r21
	REG_R22 = Reg(22) // r22
	REG_R23 = Reg(23) // r23
	REG_R24 = Reg(24) // r24
	REG_R25 = Reg(25) // r25
	REG_R26 = Reg(26) // r26
	REG_R27 = Reg(27) // r27
	REG_R28 = Reg(28) // r28
	REG_R29 = Reg(29) // r29
	REG_R30 = Reg(30) // r30
	REG_R31 = Reg(31) // r31
	REG_CR  = Reg(32) // cr
	REG_XER = Reg(33) // xer
	REG_LR  = Reg(34) // lr
	REG_CTR = Reg(35) // ctr
)

const (
	GPR_COUNT = 32 // General purpose registers.
	REG_COUNT = 36 // Registers in a complete snapshot.
)

var regByName map[string]Reg

func init() {
	regByName = make(map[string]Reg, REG_COUNT)
	for reg := range Regs() {
		regByName[reg.String()] = reg
	}
}

// GPR returns the general purpose register n.
func GPR(n int) (reg Reg, ok bool) {
	if n < 0 || n >= GPR_COUNT {
		return
	}

	reg = REG_R0 + Reg(n)
	ok = true
	return
}

// IsGPR returns true for r0..r31.
func (reg Reg) IsGPR() bool {
	return reg >= REG_R0 && reg <= REG_R31
}

// Valid returns true if the register is part of a snapshot.
func (reg Reg) Valid() bool {
	return reg >= 0 && reg < REG_COUNT
}

// Regs iterates over every snapshot register in canonical order.
func Regs() iter.Seq[Reg] {
	return func(yield func(Reg) bool) {
		for reg := range Reg(REG_COUNT) {
			if !yield(reg) {
				return
			}
		}
	}
}

// Lookup finds a register by its case-insensitive canonical name.
func Lookup(name string) (reg Reg, ok bool) {
	reg, ok = regByName[strings.ToLower(name)]
	return
}
