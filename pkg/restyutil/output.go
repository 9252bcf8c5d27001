package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Output receives a formatted http message for every finished request.
type Output interface {
	Write(id string, contents string)
}

// FilesystemOutput writes every message to its own file in a directory.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput clears dir (if it exists) and creates it.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, fmt.Sprintf("%s.txt", id)), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}

// MemoryOutput keeps every message in memory.
type MemoryOutput struct {
	mutex    sync.Mutex
	messages map[string]string
}

func (o *MemoryOutput) Write(id string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.messages == nil {
		o.messages = map[string]string{}
	}
	o.messages[id] = contents
}

// Messages returns a copy of everything written so far keyed by message id.
func (o *MemoryOutput) Messages() map[string]string {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	out := make(map[string]string, len(o.messages))
	for k, v := range o.messages {
		out[k] = v
	}
	return out
}
