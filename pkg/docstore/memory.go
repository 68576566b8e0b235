package docstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/MGhunch/dot-file/pkg/lifecycle"
)

// Memory is an in-process store for local runs and tests.
type Memory struct {
	mu      sync.Mutex
	folders map[Location]bool
	files   map[Location][]byte
	creates int
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		folders: make(map[Location]bool),
		files:   make(map[Location][]byte),
	}
}

// AddFolder creates l and any missing ancestors.
func (m *Memory) AddFolder(l Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addFolder(l)
}

func (m *Memory) addFolder(l Location) {
	p := Join(l.Path)
	for p != "" {
		m.folders[Location{Site: l.Site, Path: p}] = true
		i := strings.LastIndex(p, "/")
		if i < 0 {
			break
		}
		p = p[:i]
	}
}

// AddFile stores data at l, creating its parent folders.
func (m *Memory) AddFile(l Location, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.Path = Join(l.Path)
	if i := strings.LastIndex(l.Path, "/"); i > 0 {
		m.addFolder(Location{Site: l.Site, Path: l.Path[:i]})
	}
	m.files[l] = data
}

// Files returns the sorted names of files directly inside folder.
func (m *Memory) Files(folder Location) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var names []string
	for l := range m.files {
		if l.Site == folder.Site && parentPath(l.Path) == Join(folder.Path) {
			names = append(names, l.Name())
		}
	}
	slices.Sort(names)
	return names
}

// File returns the content stored at l.
func (m *Memory) File(l Location) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[Location{Site: l.Site, Path: Join(l.Path)}]
	return data, ok
}

// Creates counts successful CreateFolder calls.
func (m *Memory) Creates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates
}

func (m *Memory) Start(lc *lifecycle.Coordinator) error {
	return nil
}

func (m *Memory) ListFolders(ctx context.Context, folder Location) ([]Item, error) {
	if err := validate(folder); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	parent := Join(folder.Path)
	if parent != "" && !m.folders[Location{Site: folder.Site, Path: parent}] {
		return nil, fmt.Errorf("list %s: %w", folder, ErrNotFound)
	}

	var items []Item
	for l := range m.folders {
		if l.Site == folder.Site && parentPath(l.Path) == parent {
			items = append(items, Item{Name: l.Name(), Location: l})
		}
	}
	slices.SortFunc(items, func(a, b Item) int { return strings.Compare(a.Name, b.Name) })
	return items, nil
}

func (m *Memory) CreateFolder(ctx context.Context, parent Location, name string) (Item, error) {
	if err := validate(parent); err != nil {
		return Item{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	child := parent.Child(name)
	if m.folders[child] {
		return Item{}, fmt.Errorf("create %s: %w", child, ErrConflict)
	}
	m.addFolder(child)
	m.creates++
	return Item{Name: name, Location: child}, nil
}

func (m *Memory) Move(ctx context.Context, file, folder Location) error {
	if err := validate(file); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	file.Path = Join(file.Path)
	data, ok := m.files[file]
	if !ok {
		return fmt.Errorf("move %s: %w", file, ErrNotFound)
	}
	dst := Location{Site: folder.Site, Path: Join(folder.Path)}
	if !m.folders[dst] {
		return fmt.Errorf("move %s: %w", folder, ErrNotFound)
	}

	delete(m.files, file)
	m.files[dst.Child(file.Name())] = data
	return nil
}

func (m *Memory) Write(ctx context.Context, file Location, data []byte, contentType string) error {
	if err := validate(file); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	file.Path = Join(file.Path)
	if parent := parentPath(file.Path); parent != "" && !m.folders[Location{Site: file.Site, Path: parent}] {
		return fmt.Errorf("write %s: %w", file, ErrNotFound)
	}
	m.files[file] = slices.Clone(data)
	return nil
}

func parentPath(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i]
	}
	return ""
}
