//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Renders the demo scene and writes the final frame to frame.png.
func (Run) Demo() error {
	mg.Deps(Build.Demo)
	fmt.Println("Run demo...")
	if _, err := executeCmd("bin/lumen", withArgs("-frames", "120"), withStream()); err != nil {
		return err
	}
	return nil
}
