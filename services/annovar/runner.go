package annovar

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path"

	"go.uber.org/zap"

	"vapor/api/models"
	"vapor/api/models/constants"
)

/*
	Thin wrapper around a local ANNOVAR install. The service can
	run without one: detailed annotation only needs the multianno
	TXT file to already exist, the runner is for nodes that
	produce it themselves.
*/

type (
	AnnovarRunner struct {
		InstallPath string
		HumanDbPath string
		Registry    *ProtocolRegistry
		Logger      *zap.Logger
	}
)

func NewAnnovarRunner(cfg *models.Config, registry *ProtocolRegistry, logger *zap.Logger) *AnnovarRunner {
	return &AnnovarRunner{
		InstallPath: cfg.Annovar.Path,
		HumanDbPath: path.Join(cfg.Annovar.Path, "humandb"),
		Registry:    registry,
		Logger:      logger.Named("annovar-runner"),
	}
}

func (r *AnnovarRunner) Available() bool {
	return r.InstallPath != ""
}

// Annotate runs table_annovar over a VCF and returns the path of
// the produced multianno TXT file.
func (r *AnnovarRunner) Annotate(ctx context.Context, vcfPath string, build constants.GenomeBuild, outputPrefix string) (string, error) {
	if !r.Available() {
		return "", fmt.Errorf("no annovar install configured")
	}

	entries, err := r.Registry.ForBuild(build)
	if err != nil {
		return "", err
	}
	protocols, operations := CommaLists(entries)

	cmd := exec.CommandContext(ctx, "perl", path.Join(r.InstallPath, "table_annovar.pl"),
		vcfPath, r.HumanDbPath,
		"-buildver", string(build),
		"-out", outputPrefix,
		"-remove",
		"-protocol", protocols,
		"-operation", operations,
		"-nastring", ".",
		"-vcfinput")

	cmdOutput := &bytes.Buffer{}
	cmd.Stdout = cmdOutput
	cmd.Stderr = cmdOutput

	r.Logger.Info("running table_annovar",
		zap.String("vcf", vcfPath),
		zap.String("build", string(build)),
		zap.String("out", outputPrefix))

	if err := cmd.Run(); err != nil {
		r.Logger.Error("table_annovar failed",
			zap.String("output", cmdOutput.String()),
			zap.Error(err))
		return "", fmt.Errorf("table_annovar: %w", err)
	}
	r.Logger.Debug("table_annovar finished", zap.String("output", cmdOutput.String()))

	return fmt.Sprintf("%s.%s_multianno.txt", outputPrefix, build), nil
}

// DownloadDatabases fetches every registered table for a build
// into humandb. Filter and gene tables come from the annovar
// mirror, region tables from UCSC.
func (r *AnnovarRunner) DownloadDatabases(ctx context.Context, build constants.GenomeBuild) error {
	if !r.Available() {
		return fmt.Errorf("no annovar install configured")
	}

	entries, err := r.Registry.ForBuild(build)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		args := []string{
			path.Join(r.InstallPath, "annotate_variation.pl"),
			"-buildver", string(build),
			"-downdb",
		}
		if entry.Operation != "r" {
			args = append(args, "-webfrom", "annovar")
		}
		args = append(args, entry.Protocol, r.HumanDbPath)

		cmd := exec.CommandContext(ctx, "perl", args...)
		cmdOutput := &bytes.Buffer{}
		cmd.Stdout = cmdOutput
		cmd.Stderr = cmdOutput

		r.Logger.Info("downloading annovar table",
			zap.String("protocol", entry.Protocol),
			zap.String("build", string(build)))

		if err := cmd.Run(); err != nil {
			r.Logger.Error("table download failed",
				zap.String("protocol", entry.Protocol),
				zap.String("output", cmdOutput.String()),
				zap.Error(err))
			return fmt.Errorf("downloading %s: %w", entry.Protocol, err)
		}
	}
	return nil
}
