package editor

import (
	"fmt"

	"github.com/hbagdi/hitview/pkg/config"
	"github.com/skratchdot/open-golang/open"
)

// SystemViewer opens files with the desktop's registered applications.
type SystemViewer struct {
	start     func(input string) error
	startWith func(input, appName string) error
}

var _ Viewer = SystemViewer{}

func NewSystemViewer() SystemViewer {
	return SystemViewer{
		start:     open.Start,
		startWith: open.StartWith,
	}
}

// Open uses the default application for the file type when viewer is
// "default", the named application otherwise.
func (v SystemViewer) Open(path, viewer string) error {
	var err error
	if viewer == "" || viewer == config.DefaultViewer {
		err = v.start(path)
	} else {
		err = v.startWith(path, viewer)
	}
	if err != nil {
		return fmt.Errorf("open %v: %v", path, err)
	}
	return nil
}
