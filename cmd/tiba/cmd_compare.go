package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"tiba/internal/core/dataset"
	"tiba/internal/core/examples"
	"tiba/internal/platform/net/http/bind"
	cmpdom "tiba/internal/services/api/compare/domain"
	cmpsvc "tiba/internal/services/api/compare/service"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compute distances between transition networks of several datasets",
		Long: `Render the standardized transition network of every dataset and compute
pairwise graph distances, an MDS projection and a dendrogram.

Datasets join group A unless named by --group-b.

Examples:
  tiba compare --example example1 --example example2 --example example3
  tiba compare --example example1 --file a.csv --group-b a --alg Hamming --linkage ward`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ups, err := uploadsFromFlags(cmd)
			if err != nil {
				return err
			}
			in, err := settingsFromFlags(cmd)
			if err != nil {
				return err
			}
			groupB, _ := cmd.Flags().GetStringSlice("group-b")
			wait, _ := cmd.Flags().GetDuration("wait")
			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()

			svc := cmpsvc.New(connect(cmd).cmp, cmpsvc.Config{MaxSessions: 1, Timeout: wait})
			defer svc.Shutdown()

			st, err := compare(ctx, svc, ups, groupB, in)
			if err != nil {
				return err
			}
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd, st)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "group A     %s\n", strings.Join(names(st.GroupA), ", "))
			fmt.Fprintf(w, "group B     %s\n", strings.Join(names(st.GroupB), ", "))
			fmt.Fprintf(w, "algorithm   %s (%s linkage)\n", st.Settings.Algorithm, st.Settings.Linkage)
			fmt.Fprintf(w, "mds         %s\n", st.Result.ImageURL)
			fmt.Fprintf(w, "dendrogram  %s\n", orDash(st.Result.Image2URL))
			fmt.Fprintf(w, "matrix      %s\n", st.Result.DistMatrix)
			return nil
		},
	}

	cmd.Flags().StringArray("example", nil, "Example dataset key, repeatable")
	cmd.Flags().StringArray("file", nil, "Local dataset file, repeatable")
	cmd.Flags().StringSlice("group-b", nil, "Dataset names to place in group B")
	cmd.Flags().String("alg", "", "Distance algorithm (PortraitDivergence, JaccardDistance, Frobenius, Hamming)")
	cmd.Flags().String("linkage", "", "Cluster linkage (average, complete, single, ward)")
	cmd.Flags().Int("n-init", 0, "MDS initializations")
	cmd.Flags().Int("random-state", 0, "MDS random state")
	cmd.Flags().Bool("setindices", false, "Compare node sets by index")
	return cmd
}

// compare loads every upload into one session, moves group B and runs the query
func compare(ctx context.Context, svc *cmpsvc.Svc, ups []dataset.Upload, groupB []string, in cmpdom.SettingsInput) (cmpdom.State, error) {
	st, err := svc.Create(ctx)
	if err != nil {
		return st, err
	}
	id := st.ID
	for _, up := range ups {
		if st, err = svc.AddDataset(ctx, id, up); err != nil {
			return st, err
		}
		if last := st.LastUpload; last != nil && !last.Accepted {
			return st, fmt.Errorf("%s: %w", last.Name, rejected(last.Messages))
		}
	}
	for _, entry := range st.GroupA {
		if !slices.Contains(groupB, cmpdom.EntryName(entry)) {
			continue
		}
		if st, err = svc.Switch(ctx, id, entry); err != nil {
			return st, err
		}
	}
	if _, err := svc.Configure(ctx, id, in); err != nil {
		return st, err
	}
	return svc.Distances(ctx, id)
}

func uploadsFromFlags(cmd *cobra.Command) ([]dataset.Upload, error) {
	keys, _ := cmd.Flags().GetStringArray("example")
	files, _ := cmd.Flags().GetStringArray("file")
	if len(keys)+len(files) < 2 {
		return nil, errors.New("at least two datasets are needed")
	}
	var ups []dataset.Upload
	if len(keys) > 0 {
		c, err := examples.Load()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			up, err := c.Upload(k)
			if err != nil {
				return nil, err
			}
			ups = append(ups, up)
		}
	}
	for _, f := range files {
		up, err := readUpload(f, "")
		if err != nil {
			return nil, err
		}
		ups = append(ups, up)
	}
	return ups, nil
}

// settingsFromFlags keeps unset flags nil so session defaults apply
func settingsFromFlags(cmd *cobra.Command) (cmpdom.SettingsInput, error) {
	var in cmpdom.SettingsInput
	fs := cmd.Flags()
	if fs.Changed("alg") {
		v, _ := fs.GetString("alg")
		alg := cmpdom.Algorithm(v)
		in.Algorithm = &alg
	}
	if fs.Changed("linkage") {
		v, _ := fs.GetString("linkage")
		l := cmpdom.Linkage(v)
		in.Linkage = &l
	}
	if fs.Changed("n-init") {
		v, _ := fs.GetInt("n-init")
		in.NInit = &v
	}
	if fs.Changed("random-state") {
		v, _ := fs.GetInt("random-state")
		in.RandomState = &v
	}
	if fs.Changed("setindices") {
		v, _ := fs.GetBool("setindices")
		in.SetIndices = &v
	}
	if err := bind.Struct(in); err != nil {
		return in, err
	}
	return in, nil
}

func names(entries []string) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = cmpdom.EntryName(e)
	}
	return out
}
