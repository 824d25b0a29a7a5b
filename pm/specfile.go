package bbox_pm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	bbox_lib "github.com/infra-whizz/build-box/lib"
)

// Mode of a package batch
type Mode int

const (
	Install Mode = iota
	Remove
)

func (m Mode) String() string {
	if m == Remove {
		return "remove"
	}
	return "install"
}

// Batch is a run of consecutive same-mode package directives,
// handed to the package manager in one invocation.
type Batch struct {
	Mode     Mode
	Packages []string
}

var specLine = regexp.MustCompile(`^(?P<mode>\+|-|=)\s*(?P<pkg>\S*)\s*$`)

// ReadPackageSpecs reads all spec files in order. Batches are not merged
// across files.
func ReadPackageSpecs(paths ...string) ([]Batch, error) {
	batches := []Batch{}
	for _, p := range paths {
		b, err := ReadPackageSpec(p)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b...)
	}
	return batches, nil
}

// ReadPackageSpec reads one package spec file.
func ReadPackageSpec(pth string) ([]Batch, error) {
	info, err := os.Stat(pth)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: package spec file '%s' not found", bbox_lib.ErrSpecParse, pth)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %s", bbox_lib.ErrSpecParse, err.Error())
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: '%s' is not a regular file", bbox_lib.ErrSpecParse, pth)
	}

	fh, err := os.Open(pth)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bbox_lib.ErrSpecParse, err.Error())
	}
	defer fh.Close()

	return ParsePackageSpec(fh, pth)
}

// ParsePackageSpec parses the line-oriented spec format:
//
//	# comment
//	+ pkg    install
//	- pkg    remove
//	=        start a new batch
//
// The name is only used in error messages.
func ParsePackageSpec(r io.Reader, name string) ([]Batch, error) {
	batches := []Batch{}
	var active []string
	activeMode := ""

	flush := func() {
		if len(active) > 0 {
			m := Install
			if activeMode == "-" {
				m = Remove
			}
			batches = append(batches, Batch{Mode: m, Packages: active})
			active = nil
		}
	}

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m := specLine.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("%w: malformed entry in '%s' on line %d", bbox_lib.ErrSpecParse, name, lineno)
		}

		mode, pkg := m[1], m[2]
		if mode != activeMode {
			flush()
			activeMode = mode
		}

		if mode == "=" {
			continue
		}
		if pkg == "" {
			return nil, fmt.Errorf("%w: missing package name in '%s' on line %d", bbox_lib.ErrSpecParse, name, lineno)
		}
		active = append(active, pkg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: unable to read '%s': %s", bbox_lib.ErrSpecParse, name, err.Error())
	}
	flush()

	return batches, nil
}
