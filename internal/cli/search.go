package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const searchResultLimit = 50

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for packages",
		Long: `Search for packages in the configured repositories.

The search matches package names and descriptions and returns results
grouped by the repository that carries them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSearch(args[0])
		},
	}

	return cmd
}

func runSearch(query string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	manager, err := loadRepoManager(cfg)
	if err != nil {
		return err
	}

	results, err := manager.SearchPackages(query, false, searchResultLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Printf("No packages found matching '%s'\n", query)
		return nil
	}

	byRepo := make(map[string][]*repoPackageResult)
	var repoOrder []string
	for _, r := range results {
		if _, ok := byRepo[r.RepositoryName]; !ok {
			repoOrder = append(repoOrder, r.RepositoryName)
		}
		byRepo[r.RepositoryName] = append(byRepo[r.RepositoryName], &repoPackageResult{
			Name:        r.Package.Name,
			Version:     r.Package.Version,
			Description: r.Package.Description,
		})
	}

	for _, repoName := range repoOrder {
		fmt.Printf("\n%s:\n", repoName)
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("%-30s %-15s %s\n", "PACKAGE NAME", "VERSION", "DESCRIPTION")
		fmt.Println(strings.Repeat("-", 75))

		for _, pkg := range byRepo[repoName] {
			description := pkg.Description
			if len(description) > 30 {
				description = description[:27] + "..."
			}
			fmt.Printf("%-30s %-15s %s\n", pkg.Name, pkg.Version, description)
		}
	}

	fmt.Printf("\nFound %d package(s) matching '%s'\n", len(results), query)
	return nil
}

// repoPackageResult is search.go's flattened display row, decoupled from
// repo.PackageResult so formatting doesn't depend on the manager's types.
type repoPackageResult struct {
	Name        string
	Version     string
	Description string
}
