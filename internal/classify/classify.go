// Package classify 把解析后的类型标签映射到整理目录分组。
package classify

import "github.com/John-Robertt/sortify/internal/domain"

// Category 是整理目标的粗粒度分组。
type Category string

const (
	Video         Category = "Video"
	Audio         Category = "Audio"
	Pictures      Category = "Pictures"
	Documents     Category = "Documents"
	Archives      Category = "Archives"
	Executables   Category = "Executables"
	Code          Category = "Code"
	Uncategorized Category = "Uncategorized"
	Mismatch      Category = "Mismatch"
)

// FromLabel 把类型标签映射到分组。纯函数，无失败模式：
// 未知标签 → Uncategorized；保留标签 mismatch → Mismatch。
// 标签约定为小写（解析阶段已统一）。
func FromLabel(label string) Category {
	switch label {
	case "mp4", "m4v", "mov", "mkv", "avi", "webm", "flv", "wmv",
		"mpg", "mpeg", "3gp", "ogv", "ts", "vob":
		return Video
	case "mp3", "wav", "flac", "ogg", "m4a", "aac", "opus", "wma",
		"ape", "alac", "aiff", "dsf", "dsd":
		return Audio
	case "png", "jpg", "jpeg", "gif", "bmp", "webp", "tiff", "tif",
		"svg", "ico", "heic", "heif", "raw", "cr2", "nef", "arw",
		"dng", "psd", "ai", "eps":
		return Pictures
	case "pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "txt",
		"md", "rtf", "odt", "ods", "odp", "csv", "epub", "mobi", "djvu":
		return Documents
	case "zip", "7z", "rar", "gz", "tar", "tgz", "bz2", "xz", "zst",
		"lz4", "cab", "iso", "dmg":
		return Archives
	case "exe", "msi", "elf", "app", "mach-o", "wasm", "dll", "so",
		"dylib", "bin":
		return Executables
	case "rs", "py", "js", "jsx", "tsx", "c", "cpp", "h", "hpp",
		"java", "go", "rb", "php", "swift", "kt", "cs", "html", "css",
		"scss", "sass", "less", "vue", "svelte", "sh", "bash", "zsh",
		"fish", "ps1", "bat", "cmd", "yaml", "yml", "json", "toml",
		"xml", "ini", "conf", "config", "env", "gitignore",
		"dockerfile", "makefile", "cmake", "sql":
		return Code
	case domain.LabelMismatch:
		return Mismatch
	default:
		return Uncategorized
	}
}

// DirName 返回分组在整理目录下的子目录名。
// Mismatch 的目录名刻意是给人看的提示，而不是标签本身。
func (c Category) DirName() string {
	if c == Mismatch {
		return "Check manually"
	}
	return string(c)
}
