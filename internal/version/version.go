// 包 version：构建信息，由 -ldflags "-X dotglobe/internal/version.Commit=..." 注入
package version

var (
	Version = "dev"
	Commit  = "unknown"
)

// Short 紧凑的构建标识（窗口标题、日志）
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		if len(Commit) > 7 {
			return Commit[:7]
		}
		return Commit
	}
	return "dev"
}
