// Package sniff 基于文件前缀做内容类型探测：魔数签名、容器细分、文本启发式。
//
// 所有判定都来自同一份前缀快照（每个文件只读一次，至多 HeaderCap 字节），
// 签名表是进程级只读常量，因此探测本身无共享可变状态，可安全并发。
package sniff

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// HeaderCap 是前缀采样上限。容器子类型探测（ZIP 子串扫描等）只在这个
// 窗口内生效，属于有意的概率性命中：代价 O(1)，换取不读全文件。
const HeaderCap = 64

// 通过可替换的函数指针，让测试能稳定模拟打开/读取失败。
var openFile = os.Open

// ReadPrefix 读取文件前缀（至多 HeaderCap 字节，文件更短则全部读取）。
// 每个文件只读一次；之后所有探测问题都基于这一份快照回答。
func ReadPrefix(path string) ([]byte, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("打开文件读取前缀失败 %s：%w", path, err)
	}
	defer f.Close()

	buf := make([]byte, HeaderCap)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("读取文件前缀失败 %s：%w", path, err)
	}
	return buf[:n], nil
}

type signature struct {
	pattern []byte
	offset  int
	label   string
}

// 固定签名表。顺序即优先级（首个命中生效），所以必须是有序切片而不是 map。
var fixedSignatures = []signature{
	{[]byte("\x89PNG\r\n\x1a\n"), 0, "png"},
	{[]byte("\xff\xd8\xff"), 0, "jpg"},
	{[]byte("GIF87a"), 0, "gif"},
	{[]byte("GIF89a"), 0, "gif"},
	{[]byte("BM"), 0, "bmp"},
	{[]byte("%PDF"), 0, "pdf"},
	{[]byte("%!PS-Adobe-"), 0, "ps"},
	{[]byte("PK\x03\x04"), 0, "zip"},
	{[]byte("\x1f\x8b\x08"), 0, "gz"},
	{[]byte("\x1a\x45\xdf\xa3"), 0, "mkv"},
	{[]byte("WEBP"), 8, "webp"},
	{[]byte("ID3"), 0, "mp3"},
	{[]byte("OggS"), 0, "ogg"},
	{[]byte("fLaC"), 0, "flac"},
	{[]byte("\x00\x00\x01\x00"), 0, "ico"},
	{[]byte("II*\x00"), 0, "tif"},
	{[]byte("MM\x00*"), 0, "tif"},
	{[]byte("Rar!\x1a\x07\x00"), 0, "rar"},
	{[]byte("7z\xbc\xaf\x27\x1c"), 0, "7z"},
}

// 二进制指示签名表（与固定表互斥）。命中即按二进制处理；
// 标签同样参与冲突判定（MZ 开头的 photo.png 是 exe/png 冲突）。
var binarySignatures = []signature{
	{[]byte("MZ"), 0, "exe"},
	{[]byte("\x7fELF"), 0, "elf"},
	{[]byte("\xca\xfe\xba\xbe"), 0, "mach-o"},
	{[]byte("\xcf\xfa\xed\xfe"), 0, "mach-o"},
	{[]byte("\xfe\xed\xfa\xcf"), 0, "mach-o"},
	{[]byte("\xfe\xed\xfa\xce"), 0, "mach-o"},
	{[]byte("\x00asm"), 0, "wasm"},
}

// Detection 是对单个前缀的探测结论。
type Detection struct {
	Label  string // 签名得到的类型标签；无命中为 ""
	Binary bool   // 是否按二进制处理
}

// Detect 在同一份前缀上一次性完成类型探测与二进制判定。
//
// 顺序语义攸关，不可调整：
// 1. 容器族（ISO-BMFF → RIFF → ZIP）
// 2. JSON 文本探测（命中则明确判定为非二进制）
// 3. 固定签名表（所有固定签名均视为二进制指示）
// 4. 二进制指示签名表
// 5. 通用二进制启发式
func Detect(prefix []byte) Detection {
	if len(prefix) == 0 {
		return Detection{}
	}
	if label, ok := detectMP4(prefix); ok {
		return Detection{Label: label, Binary: true}
	}
	if label, ok := detectRIFF(prefix); ok {
		return Detection{Label: label, Binary: true}
	}
	if label, ok := detectZIP(prefix); ok {
		return Detection{Label: label, Binary: true}
	}
	if detectJSON(prefix) {
		return Detection{Label: "json", Binary: false}
	}
	if label, ok := matchFixed(prefix); ok {
		return Detection{Label: label, Binary: true}
	}
	if label, ok := matchBinaryIndicator(prefix); ok {
		return Detection{Label: label, Binary: true}
	}
	return Detection{Binary: looksBinary(prefix)}
}

// matchAt 做精确字节比较：offset 越界即不命中，无任何归一化或通配。
func matchAt(prefix []byte, offset int, pattern []byte) bool {
	return len(prefix) >= offset+len(pattern) && bytes.Equal(prefix[offset:offset+len(pattern)], pattern)
}

func matchFixed(prefix []byte) (string, bool) {
	for _, sig := range fixedSignatures {
		if matchAt(prefix, sig.offset, sig.pattern) {
			return sig.label, true
		}
	}
	return "", false
}

func matchBinaryIndicator(prefix []byte) (string, bool) {
	for _, sig := range binarySignatures {
		if matchAt(prefix, sig.offset, sig.pattern) {
			return sig.label, true
		}
	}
	return "", false
}

// detectMP4 识别 ISO-BMFF（MP4 族）容器：offset 4 处的 "ftyp" 标记 +
// offset 8 处的 4 字节子类型。
func detectMP4(prefix []byte) (string, bool) {
	if len(prefix) < 12 || !matchAt(prefix, 4, []byte("ftyp")) {
		return "", false
	}
	switch string(prefix[8:12]) {
	case "isom", "iso2", "mp41", "mp42", "avc1", "MSNV", "mp71":
		return "mp4", true
	case "M4V ":
		return "m4v", true
	case "M4A ":
		return "m4a", true
	case "M4B ":
		return "m4b", true
	case "qt  ":
		return "mov", true
	default:
		// 容器标记已命中：未知子类型必须回退 mp4，绝不能是“无命中”。
		return "mp4", true
	}
}

// detectRIFF 识别 RIFF 容器：offset 0 处的 "RIFF" + offset 8 处的 fourCC。
// 未知 fourCC 不做回退，交还给后续阶段。
func detectRIFF(prefix []byte) (string, bool) {
	if len(prefix) < 12 || !matchAt(prefix, 0, []byte("RIFF")) {
		return "", false
	}
	switch string(prefix[8:12]) {
	case "WEBP":
		return "webp", true
	case "WAVE":
		return "wav", true
	case "AVI ":
		return "avi", true
	default:
		return "", false
	}
}

// detectZIP 识别 ZIP 族：本地文件头魔数 + 前缀窗口内的特征子串。
// 子串只可能出现在采样窗口内时才会命中（概率性细分），否则落回 zip。
func detectZIP(prefix []byte) (string, bool) {
	if !matchAt(prefix, 0, []byte("PK\x03\x04")) {
		return "", false
	}
	switch {
	case bytes.Contains(prefix, []byte("[Content_Types].xml")) || bytes.Contains(prefix, []byte("word/")):
		return "docx", true
	case bytes.Contains(prefix, []byte("xl/")):
		return "xlsx", true
	case bytes.Contains(prefix, []byte("ppt/")):
		return "pptx", true
	case bytes.Contains(prefix, []byte("AndroidManifest.xml")):
		return "apk", true
	case bytes.Contains(prefix, []byte("META-INF/")):
		return "jar", true
	default:
		return "zip", true
	}
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// detectJSON：跳过 UTF-8 BOM 后，首个非空白字节是 '{' 或 '['，
// 且正文里出现过 '"'、':'、',' 之一。
func detectJSON(prefix []byte) bool {
	body := prefix
	if bytes.HasPrefix(body, utf8BOM) {
		body = body[3:]
	}
	i := 0
	for i < len(body) && isASCIISpace(body[i]) {
		i++
	}
	if i == len(body) {
		return false
	}
	if body[i] != '{' && body[i] != '[' {
		return false
	}
	return bytes.ContainsAny(body, "\":,")
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\x0c', '\r':
		return true
	}
	return false
}

// looksBinary 是兜底启发式：任一 NUL 字节即二进制；否则统计
// {tab, LF, CR, 0x20..0x7E} 之外的字节占比，严格大于 30% 判为二进制。
func looksBinary(prefix []byte) bool {
	if len(prefix) == 0 {
		return false
	}
	nonText := 0
	for _, b := range prefix {
		if b == 0 {
			return true
		}
		switch {
		case b == 0x09 || b == 0x0a || b == 0x0d:
		case b >= 0x20 && b <= 0x7e:
		default:
			nonText++
		}
	}
	return float64(nonText)/float64(len(prefix)) > 0.30
}
