package statistics

import (
	"fmt"

	"github.com/levenlabs/go-lflag"
)

// Configured sets up the statistics provider based on flags. Without a
// recorder database the provider is empty and peak billing reports zero.
func Configured() Provider {
	path := lflag.String("recorder-db", "", "Path to the recorder SQLite database (empty disables history)")

	var p struct{ Provider }

	lflag.Do(func() {
		if *path == "" {
			p.Provider = Empty{}
			return
		}
		r, err := Open(*path)
		if err != nil {
			panic(fmt.Sprintf("recorder open failed: %v", err))
		}
		p.Provider = r
	})

	return &p
}
