package update

import "runtime"

// AssetSuffix 返回当前平台对应的发布资产名后缀。
// 未覆盖的平台返回 ok=false（检查仍可进行，只是没有直链）。
func AssetSuffix() (string, bool) {
	return assetSuffix(runtime.GOOS, runtime.GOARCH)
}

func assetSuffix(goos, goarch string) (string, bool) {
	switch goos + "/" + goarch {
	case "windows/amd64":
		return "windows-x86_64.exe", true
	case "linux/amd64":
		return "linux-x86_64", true
	case "darwin/arm64":
		return "darwin-aarch64", true
	case "darwin/amd64":
		return "darwin-x86_64", true
	default:
		return "", false
	}
}
