package plugin

import (
	"context"

	"github.com/callan/sweep/internal/config"
	"github.com/callan/sweep/pkg/registry"
	"github.com/callan/sweep/pkg/services"
)

// launcherTool is the common shape of the built-in plugins: the launch
// path resolution is delegated to the external tool service.
type launcherTool struct {
	info Info
}

func (t launcherTool) Spec() Info {
	return t.info
}

func (t launcherTool) Launch(ctx context.Context, cfg *config.Config) registry.ExecutionResult {
	return services.NewExternalToolService(cfg).LaunchTool(ctx, t.info.ID)
}

// Builtin returns the bundled external-tool plugin set.
func Builtin() []ExternalTool {
	infos := []Info{
		{
			ID:          "bleachbit",
			Title:       "BleachBit",
			Category:    "Cleanup",
			Tab:         "maintenance",
			Icon:        "🧹",
			Description: "Deep system cleaner - free disk space and guard privacy",
			DownloadURL: "https://www.bleachbit.org",
		},
		{
			ID:          "bcuninstaller",
			Title:       "Bulk Crap Uninstaller",
			Category:    "Cleanup",
			Tab:         "maintenance",
			Icon:        "🗑️",
			Description: "Remove many programs at once, including leftovers",
			DownloadURL: "https://www.bcuninstaller.com",
		},
		{
			ID:            "autoruns",
			Title:         "Autoruns",
			Category:      "Startup & Processes",
			Tab:           "maintenance",
			Icon:          "🚀",
			Description:   "Inspect every auto-starting program, driver, and task",
			DownloadURL:   "https://learn.microsoft.com/sysinternals/downloads/autoruns",
			RequiresAdmin: true,
		},
		{
			ID:          "crystaldiskinfo",
			Title:       "CrystalDiskInfo",
			Category:    "Storage & Files",
			Tab:         "maintenance",
			Icon:        "💿",
			Description: "Disk health monitor with S.M.A.R.T. readouts",
			DownloadURL: "https://crystalmark.info/en/software/crystaldiskinfo/",
		},
		{
			ID:          "treesize",
			Title:       "TreeSize Free",
			Category:    "Storage & Files",
			Tab:         "maintenance",
			Icon:        "📊",
			Description: "Visual disk space analyzer - find large files",
			DownloadURL: "https://www.jam-software.com/treesize_free",
		},
		{
			ID:          "everything",
			Title:       "Everything",
			Category:    "Storage & Files",
			Tab:         "maintenance",
			Icon:        "🔍",
			Description: "Instant filename search across all drives",
			DownloadURL: "https://www.voidtools.com",
		},
		{
			ID:          "process_lasso",
			Title:       "Process Lasso",
			Category:    "Startup & Processes",
			Tab:         "optimization",
			Icon:        "⚙️",
			Description: "Automated CPU priority and affinity tuning",
			DownloadURL: "https://bitsum.com",
		},
		{
			ID:            "shutup10",
			Title:         "O&O ShutUp10++",
			Category:      "Privacy",
			Tab:           "optimization",
			Icon:          "🔒",
			Description:   "One-screen privacy settings for Windows",
			DownloadURL:   "https://www.oo-software.com/en/shutup10",
			RequiresAdmin: true,
		},
		{
			ID:          "hwinfo",
			Title:       "HWiNFO",
			Category:    "Diagnostics",
			Tab:         "optimization",
			Icon:        "📈",
			Description: "Hardware analysis, monitoring, and reporting",
			DownloadURL: "https://www.hwinfo.com",
		},
	}

	tools := make([]ExternalTool, 0, len(infos))
	for _, info := range infos {
		tools = append(tools, launcherTool{info: info})
	}
	return tools
}
