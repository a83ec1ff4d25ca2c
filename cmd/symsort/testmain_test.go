package main

import (
	"os"
	"testing"

	"github.com/michaelscutari/symsort/internal/testutil"
)

func TestMain(m *testing.M) {
	os.Exit(testutil.RunWithScratchTemp(m))
}
