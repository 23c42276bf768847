package media

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Type is the media class of a source.
type Type uint8

const (
	// TypeUnknown is anything without a known media extension.
	TypeUnknown Type = iota
	// TypeImage is a raster image.
	TypeImage
	// TypeScale is a scalable document (vector graphics, PostScript, PDF).
	TypeScale
	// TypeEdje is a compiled interactive graphic.
	TypeEdje
	// TypeMovie is a video.
	TypeMovie
)

// String returns a string representation of the type.
func (t Type) String() string {
	switch t {
	case TypeImage:
		return "image"
	case TypeScale:
		return "scale"
	case TypeEdje:
		return "edje"
	case TypeMovie:
		return "movie"
	default:
		return "unknown"
	}
}

// Inline reports whether the type can be previewed inside the widget.
func (t Type) Inline() bool {
	return t != TypeUnknown
}

var extensions = map[Type][]string{
	TypeImage: {
		".png", ".jpg", ".jpeg", ".jpe", ".jfif", ".tif", ".tiff", ".gif",
		".bmp", ".ico", ".ppm", ".pgm", ".pbm", ".pnm", ".xpm", ".psd",
		".wbmp", ".cur", ".xcf", ".xcf.gz", ".arw", ".cr2", ".crw", ".dcr",
		".dng", ".k25", ".kdc", ".erf", ".mrw", ".nef", ".nrf", ".nrw",
		".orf", ".raw", ".rw2", ".pef", ".raf", ".sr2", ".srf", ".x3f",
		".webp",
	},
	TypeScale: {
		".svg", ".svgz", ".svg.gz", ".ps", ".ps.gz", ".pdf",
	},
	TypeEdje: {
		".edj",
	},
	TypeMovie: {
		".asf", ".avi", ".bdm", ".bdmv", ".clpi", ".cpi", ".dv", ".fla",
		".flv", ".m1v", ".m2t", ".m2v", ".m4v", ".mkv", ".mov", ".mp2",
		".mp2ts", ".mp4", ".mpe", ".mpeg", ".mpg", ".mpl", ".mpls", ".mts",
		".mxf", ".nut", ".nuv", ".ogg", ".ogm", ".ogv", ".qt", ".rm",
		".rmj", ".rmm", ".rms", ".rmx", ".rmvb", ".rv", ".swf", ".ts",
		".webm", ".weba", ".wmv", ".3g2", ".3gp", ".3gp2", ".3gpp",
		".3gpp2", ".3p2", ".264",
	},
}

// classOrder fixes the lookup order so that compound extensions such as
// ".svg.gz" never race a shorter match in another class.
var classOrder = []Type{TypeImage, TypeScale, TypeEdje, TypeMovie}

// Classify returns the media type of src.
func Classify(src string) Type {
	p := strings.ToLower(sourcePath(src))
	if p == "" {
		return TypeUnknown
	}
	for _, t := range classOrder {
		for _, ext := range extensions[t] {
			if strings.HasSuffix(p, ext) {
				return t
			}
		}
	}
	return TypeUnknown
}

// IsLocal reports whether src names a local file rather than a remote URL.
func IsLocal(src string) bool {
	if strings.HasPrefix(src, "/") {
		return true
	}
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" {
		return true
	}
	return u.Scheme == "file"
}

// LocalPath strips a file:// scheme from src.
func LocalPath(src string) string {
	if rest, ok := strings.CutPrefix(src, "file://"); ok {
		return rest
	}
	return src
}

// Probe checks that a local source exists. Remote sources are assumed to
// resolve.
func Probe(src string) error {
	if src == "" {
		return ErrEmptySource
	}
	if !IsLocal(src) {
		return nil
	}
	path := LocalPath(src)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return nil
}

func sourcePath(src string) string {
	if IsLocal(src) {
		return LocalPath(src)
	}
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	return u.Path
}
