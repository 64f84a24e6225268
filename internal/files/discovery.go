package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"spotcli/internal/config"
)

// FileInfo describes one discovered workbook.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery locates workbooks under a base directory.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery instance rooted at basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindExcelFiles lists the Excel workbooks in dir, sorted by name so
// batch runs are deterministic. Excel lock files ("~$...") are skipped.
func (d *Discovery) FindExcelFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		lower := strings.ToLower(name)
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xls") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// LocateRequiredSources matches the workbooks in dir against the nine
// required source file names. It returns the found name→path set and
// the list of missing file names in contract order.
func (d *Discovery) LocateRequiredSources(dir string) (map[string]string, []string, error) {
	found := make(map[string]string)

	files, err := d.FindExcelFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	byName := make(map[string]string, len(files))
	for _, f := range files {
		byName[f.Name] = f.Path
	}

	var missing []string
	for _, name := range config.RequiredSourceFiles() {
		path, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		found[name] = path
	}

	return found, missing, nil
}

// ExcelPaths returns just the paths of the given files.
func ExcelPaths(files []FileInfo) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}
