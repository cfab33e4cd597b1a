package config

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lakshaymaurya-felt/reclaim/internal/envutil"
	"github.com/lakshaymaurya-felt/reclaim/internal/rules"
)

// DefaultRules returns the catalog written into a fresh database.
// Paths keep their %VAR% placeholders; they are expanded at evaluation time.
func DefaultRules() []rules.Rule {
	rs := []rules.Rule{
		// ── User Temp ───────────────────────────────────────────
		{
			ID:               "user_temp",
			Title:            "User temporary files",
			Description:      "Files left behind in the per-user temp directory",
			Category:         "user",
			Risk:             rules.RiskLow,
			DefaultChecked:   true,
			Type:             rules.TypePath,
			Path:             `%LOCALAPPDATA%\Temp`,
			AgeThresholdDays: rules.Int64(1),
			Action:           rules.ActionDelete,
		},
		{
			ID:            "system_temp",
			Title:         "System temporary files",
			Category:      "system",
			Risk:          rules.RiskLow,
			RequiresAdmin: true,
			Type:          rules.TypePath,
			Path:          `%WINDIR%\Temp`,
			Action:        rules.ActionDelete,
		},

		// ── Browser Caches ──────────────────────────────────────
		{
			ID:             "chrome_cache",
			Title:          "Google Chrome cache",
			Category:       "browser",
			Risk:           rules.RiskLow,
			DefaultChecked: true,
			Type:           rules.TypePattern,
			Path:           `%LOCALAPPDATA%\Google\Chrome\User Data\Default`,
			Pattern:        "*Cache*",
			Action:         rules.ActionDelete,
			Notes:          "Covers Cache, Code Cache, GPUCache and CacheStorage",
		},
		{
			ID:             "edge_cache",
			Title:          "Microsoft Edge cache",
			Category:       "browser",
			Risk:           rules.RiskLow,
			DefaultChecked: true,
			Type:           rules.TypePattern,
			Path:           `%LOCALAPPDATA%\Microsoft\Edge\User Data\Default`,
			Pattern:        "*Cache*",
			Action:         rules.ActionDelete,
		},
		{
			ID:       "firefox_cache",
			Title:    "Mozilla Firefox cache",
			Category: "browser",
			Risk:     rules.RiskLow,
			Type:     rules.TypePattern,
			Path:     `%LOCALAPPDATA%\Mozilla\Firefox\Profiles`,
			Pattern:  "*/{cache2,startupCache,thumbnails}/*",
			Action:   rules.ActionDelete,
		},
		{
			ID:       "brave_cache",
			Title:    "Brave cache",
			Category: "browser",
			Risk:     rules.RiskLow,
			Type:     rules.TypePattern,
			Path:     `%LOCALAPPDATA%\BraveSoftware\Brave-Browser\User Data\Default`,
			Pattern:  "*Cache*",
			Action:   rules.ActionDelete,
		},

		// ── Developer Caches ────────────────────────────────────
		{
			ID:       "npm_cache",
			Title:    "npm cache",
			Category: "dev",
			Risk:     rules.RiskLow,
			Type:     rules.TypePath,
			Path:     `%APPDATA%\npm-cache`,
			Action:   rules.ActionDelete,
		},
		{
			ID:       "pip_cache",
			Title:    "pip cache",
			Category: "dev",
			Risk:     rules.RiskLow,
			Type:     rules.TypePath,
			Path:     `%LOCALAPPDATA%\pip\Cache`,
			Action:   rules.ActionDelete,
		},
		{
			ID:       "cargo_cache",
			Title:    "Cargo registry cache",
			Category: "dev",
			Risk:     rules.RiskLow,
			Type:     rules.TypePath,
			Path:     `%USERPROFILE%\.cargo\registry\cache`,
			Action:   rules.ActionDelete,
		},
		{
			ID:       "gradle_cache",
			Title:    "Gradle caches",
			Category: "dev",
			Risk:     rules.RiskLow,
			Type:     rules.TypePath,
			Path:     `%USERPROFILE%\.gradle\caches`,
			Action:   rules.ActionDelete,
		},
		{
			ID:               "nuget_cache",
			Title:            "NuGet packages",
			Category:         "dev",
			Risk:             rules.RiskMedium,
			Type:             rules.TypePath,
			Path:             `%USERPROFILE%\.nuget\packages`,
			AgeThresholdDays: rules.Int64(30),
			Action:           rules.ActionDelete,
		},
		{
			ID:       "go_mod_cache",
			Title:    "Go module download cache",
			Category: "dev",
			Risk:     rules.RiskLow,
			Type:     rules.TypePath,
			Path:     `%USERPROFILE%\go\pkg\mod\cache`,
			Action:   rules.ActionDelete,
		},
		{
			ID:       "vscode_cache",
			Title:    "Visual Studio Code cache and logs",
			Category: "dev",
			Risk:     rules.RiskLow,
			Type:     rules.TypePattern,
			Path:     `%APPDATA%\Code`,
			Pattern:  "{Cache,CachedData,CachedExtensions,CachedExtensionVSIXs,logs}/*",
			Action:   rules.ActionDelete,
		},
		{
			ID:       "jetbrains_cache",
			Title:    "JetBrains IDE caches",
			Category: "dev",
			Risk:     rules.RiskMedium,
			Type:     rules.TypePattern,
			Path:     `%LOCALAPPDATA%\JetBrains`,
			Pattern:  "*/{caches,log,tmp}/*",
			Action:   rules.ActionDelete,
		},

		// ── System Caches ───────────────────────────────────────
		{
			ID:            "windows_update_cache",
			Title:         "Windows Update download cache",
			Category:      "system",
			Risk:          rules.RiskMedium,
			RequiresAdmin: true,
			Type:          rules.TypePath,
			Path:          `%WINDIR%\SoftwareDistribution\Download`,
			Action:        rules.ActionDelete,
		},
		{
			ID:               "cbs_logs",
			Title:            "Component-Based Servicing logs",
			Category:         "system",
			Risk:             rules.RiskLow,
			RequiresAdmin:    true,
			Type:             rules.TypePattern,
			Path:             `%WINDIR%\Logs\CBS`,
			Pattern:          "*.log",
			AgeThresholdDays: rules.Int64(7),
			Action:           rules.ActionDelete,
		},
		{
			ID:            "wer_reports",
			Title:         "Windows Error Reporting archives",
			Category:      "system",
			Risk:          rules.RiskLow,
			RequiresAdmin: true,
			Type:          rules.TypePattern,
			Path:          `%PROGRAMDATA%\Microsoft\Windows\WER`,
			Pattern:       "Report{Archive,Queue}/*",
			Action:        rules.ActionDelete,
		},
		{
			ID:            "delivery_optimization",
			Title:         "Delivery Optimization cache",
			Category:      "system",
			Risk:          rules.RiskLow,
			RequiresAdmin: true,
			Type:          rules.TypePath,
			Path:          `%WINDIR%\SoftwareDistribution\DeliveryOptimization`,
			Action:        rules.ActionDelete,
		},
		{
			ID:            "memory_dumps",
			Title:         "Minidump crash files",
			Category:      "system",
			Risk:          rules.RiskLow,
			RequiresAdmin: true,
			Type:          rules.TypePattern,
			Path:          `%WINDIR%\Minidump`,
			Pattern:       "*.dmp",
			Action:        rules.ActionDelete,
		},

		// ── Thumbnails ──────────────────────────────────────────
		{
			ID:             "thumbnails",
			Title:          "Explorer thumbnail cache",
			Category:       "user",
			Risk:           rules.RiskLow,
			DefaultChecked: true,
			Type:           rules.TypePattern,
			Path:           `%LOCALAPPDATA%\Microsoft\Windows\Explorer`,
			Pattern:        "thumbcache_*.db",
			Action:         rules.ActionRecycle,
		},
		{
			ID:               "large_downloads",
			Title:            "Large old installers in Downloads",
			Category:         "user",
			Risk:             rules.RiskMedium,
			Type:             rules.TypePattern,
			Path:             `%USERPROFILE%\Downloads`,
			Pattern:          "*.{exe,msi,iso,zip}",
			SizeThresholdMB:  rules.Int64(100),
			AgeThresholdDays: rules.Int64(90),
			Action:           rules.ActionRecycle,
		},

		// ── Windows.old ─────────────────────────────────────────
		{
			ID:            "windows_old",
			Title:         "Previous Windows installation",
			Category:      "system",
			Risk:          rules.RiskHigh,
			RequiresAdmin: true,
			Type:          rules.TypePath,
			Path:          `%SYSTEMDRIVE%\Windows.old`,
			Action:        rules.ActionDelete,
		},

		// ── Tools ───────────────────────────────────────────────
		{
			ID:            "dism_component_cleanup",
			Title:         "Component store cleanup",
			Description:   "Removes superseded components from WinSxS via DISM",
			Category:      "system",
			Risk:          rules.RiskMedium,
			RequiresAdmin: true,
			Type:          rules.TypeSpecial,
			Action:        rules.ActionToolCall,
			ToolCmd:       "Dism.exe /Online /Cleanup-Image /StartComponentCleanup",
		},

		// ── Leftovers ───────────────────────────────────────────
		{
			ID:            "orphan_uninstall_entries",
			Title:         "Orphaned uninstall entries",
			Category:      "registry",
			Risk:          rules.RiskHigh,
			RequiresAdmin: true,
			Type:          rules.TypeRegistry,
			Action:        rules.ActionDelete,
		},
		{
			ID:               "app_residue",
			Title:            "Leftover application folders",
			Category:         "apps",
			Risk:             rules.RiskHigh,
			RequiresAdmin:    true,
			Type:             rules.TypeAppResidue,
			AgeThresholdDays: rules.Int64(180),
			Action:           rules.ActionDelete,
		},
	}
	for i := range rs {
		rs[i].Enabled = true
		rs[i].SortOrder = int64(i)
	}
	return rs
}

// ProtectedPaths returns locations no imported rule may target directly.
// Built from the environment so that installs on any drive letter are
// covered.
func ProtectedPaths() []string {
	vars := []string{
		`%WINDIR%`,
		`%WINDIR%\System32`,
		`%WINDIR%\SysWOW64`,
		`%WINDIR%\WinSxS`,
		`%WINDIR%\Installer`,
		`%WINDIR%\servicing`,
		`%SYSTEMDRIVE%\`,
		`%SYSTEMDRIVE%\Users`,
		`%SYSTEMDRIVE%\Boot`,
		`%SYSTEMDRIVE%\EFI`,
		`%SYSTEMDRIVE%\Recovery`,
		`%PROGRAMFILES%`,
		`%PROGRAMFILES(X86)%`,
		`%PROGRAMDATA%`,
		`%USERPROFILE%`,
	}
	out := make([]string, 0, len(vars))
	for _, v := range vars {
		p := envutil.ExpandWindowsEnv(v)
		if strings.Contains(p, "%") {
			continue
		}
		out = append(out, nativePath(p))
	}
	return out
}

// IsProtected reports whether path, after expansion, is one of the
// ProtectedPaths. Only exact matches count: rules beneath a protected
// directory are normal.
func IsProtected(path string) bool {
	p := envutil.ExpandWindowsEnv(path)
	if strings.TrimSpace(p) == "" {
		return false
	}
	p = nativePath(p)
	for _, q := range ProtectedPaths() {
		if samePath(p, q) {
			return true
		}
	}
	return false
}

// nativePath turns either separator style into the OS one and cleans it.
func nativePath(p string) string {
	return filepath.Clean(filepath.FromSlash(strings.ReplaceAll(p, `\`, "/")))
}

func samePath(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
