package scorm

import (
	"archive/zip"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/akozlov/scormgen/internal/course"
)

// ManifestFilename is the fixed name SCORM 1.2 requires at the archive root.
const ManifestFilename = "imsmanifest.xml"

// Builder assembles course documents into SCORM packages.
type Builder struct {
	renderer *Renderer
	log      *slog.Logger
}

func NewBuilder(log *slog.Logger) (*Builder, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Builder{renderer: renderer, log: log}, nil
}

// packageFile is one archive entry. Files are written in slice order so the
// same document always produces a byte-identical archive.
type packageFile struct {
	Name string
	Data []byte
}

// Build compiles the document and writes the zip archive. When outputPath is
// empty the archive lands in outputDir under a slug of the course title. The
// archive appears atomically: on any failure nothing is left at the final
// path.
func (b *Builder) Build(doc *course.Document, outputDir, outputPath string) (string, error) {
	if outputPath == "" {
		outputPath = filepath.Join(outputDir, Slugify(doc.Title)+".zip")
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}

	files, err := b.assemble(doc)
	if err != nil {
		return "", err
	}
	if err := writeZipAtomic(outputPath, files); err != nil {
		return "", err
	}
	b.log.Info("scorm package written",
		"path", outputPath,
		"units", doc.UnitCount(),
		"files", len(files))
	return outputPath, nil
}

func (b *Builder) assemble(doc *course.Document) ([]packageFile, error) {
	tree := CompileTree(doc)

	manifest, err := Manifest(tree, doc.Settings)
	if err != nil {
		return nil, err
	}
	index, err := b.renderer.RenderIndex(doc, tree)
	if err != nil {
		return nil, err
	}

	files := []packageFile{
		{Name: ManifestFilename, Data: manifest},
		{Name: indexFilename, Data: index},
	}

	for mi, mod := range doc.Modules {
		for si, sec := range mod.Sections {
			for ui, sco := range sec.SCOs {
				page, err := b.renderer.RenderSCO(doc, sco)
				if err != nil {
					return nil, fmt.Errorf("render unit %d.%d.%d: %w", mi+1, si+1, ui+1, err)
				}
				leaf := tree.Modules[mi].Sections[si].Units[ui]
				files = append(files, packageFile{Name: leaf.Filename, Data: page})
			}
		}
	}

	if tree.FinalTest != nil {
		page, err := b.renderer.RenderFinalTest(doc)
		if err != nil {
			return nil, err
		}
		files = append(files, packageFile{Name: tree.FinalTest.Filename, Data: page})
	}

	files = append(files,
		packageFile{Name: styleFilename, Data: StyleCSS},
		packageFile{Name: bridgeFilename, Data: BridgeJS},
	)
	return files, nil
}

// writeZipAtomic writes the archive to a temp file in the destination
// directory, fsyncs it and renames it into place.
func writeZipAtomic(path string, files []packageFile) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, f := range files {
		// Fixed header fields keep the archive bytes reproducible.
		w, werr := zw.CreateHeader(&zip.FileHeader{
			Name:   f.Name,
			Method: zip.Deflate,
		})
		if werr != nil {
			return fmt.Errorf("archive entry %s: %w", f.Name, werr)
		}
		if _, werr := w.Write(f.Data); werr != nil {
			return fmt.Errorf("archive entry %s: %w", f.Name, werr)
		}
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("publish archive: %w", err)
	}
	return nil
}
