//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles the lingo binary into ./bin.
func Build() error {
	mg.Deps(Test)
	fmt.Println("Building lingo...")
	return sh.RunV("go", "build", "-o", "bin/lingo", "./cmd/lingo")
}

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet across the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm("bin")
}
