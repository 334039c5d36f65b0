package cli

import (
	"context"
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/modsync-tools/modsync/internal/catalog"
	"github.com/modsync-tools/modsync/internal/types"
	"github.com/modsync-tools/modsync/internal/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List modpacks under the configured instances folder",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// packListing is the list command payload, renderable as JSON or table
type packListing struct {
	Packs []packInfo `json:"packs"`
}

type packInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Version     string `json:"version,omitempty"`
	Path        string `json:"path"`
	HasMods     bool   `json:"hasMods"`
	HasManifest bool   `json:"hasManifest"`
	LastSynced  string `json:"lastSynced,omitempty"`

	lastSyncedAt time.Time
}

func (l packListing) Headers() []string {
	return []string{"Name", "Version", "Mods", "Last Synced"}
}

func (l packListing) Rows() [][]string {
	rows := make([][]string, 0, len(l.Packs))
	for _, p := range l.Packs {
		version := p.Version
		if version == "" {
			version = "-"
		}
		mods := "no"
		if p.HasMods {
			mods = "yes"
		}
		synced := "never"
		if !p.lastSyncedAt.IsZero() {
			synced = humanize.Time(p.lastSyncedAt)
		}
		rows = append(rows, []string{truncate(p.DisplayName, 40), version, mods, synced})
	}
	return rows
}

func (l packListing) EmptyMessage() string {
	return "No modpacks found in the instances folder."
}

func runList(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	ctx := context.Background()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	engine, _, err := newEngine()
	if err != nil {
		return out.Fail("list", utils.NewCLIError(utils.ErrCodeConfigInvalid, err.Error()).Build())
	}
	defer engine.Close()

	packs, err := engine.ListModpacks()
	if err != nil {
		code := utils.ErrCodeUnknown
		if errors.Is(err, catalog.ErrRootNotFound) {
			code = utils.ErrCodeRootNotFound
		}
		return out.Fail("list", utils.NewCLIError(code, err.Error()).Build())
	}

	listing := packListing{Packs: make([]packInfo, 0, len(packs))}
	for _, pack := range packs {
		info := packInfo{
			Name:        pack.Name,
			DisplayName: pack.DisplayName,
			Version:     pack.Version,
			Path:        pack.Path,
			HasMods:     pack.HasMods,
			HasManifest: pack.HasManifest,
		}
		if ts, err := engine.LastSynced(ctx, pack.Name); err == nil {
			info.lastSyncedAt = ts
			info.LastSynced = formatTimestamp(ts)
		}
		listing.Packs = append(listing.Packs, info)
	}

	return out.WriteSuccess("list", listing)
}

// formatTimestamp renders an absolute time for JSON consumers
func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(time.RFC3339)
}

var _ types.TableRenderer = packListing{}
