package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/udisondev/ttmgo/internal/backend"
	"github.com/udisondev/ttmgo/internal/codec"
	"github.com/udisondev/ttmgo/internal/content"
	"github.com/udisondev/ttmgo/internal/model"
)

func (a *app) newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <tree|loadout|build> <id>",
		Short: "Follow an id through its import chain and print the root",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := model.ParseContentType(args[0])
			if err != nil {
				return err
			}
			id := model.ContentID(args[1])

			return a.withService(cmd.Context(), func(svc *content.Service) error {
				switch typ {
				case model.ContentTree:
					v, err := svc.Tree(cmd.Context(), id)
					if err != nil {
						return err
					}
					printTree(cmd, v)
				case model.ContentLoadout:
					v, err := svc.Loadout(cmd.Context(), id)
					if err != nil {
						return err
					}
					printf(cmd, "loadout %s (root %s, imported %t)\n", v.ID, v.RootID, v.Imported)
					printf(cmd, "  name: %s\n", v.Loadout.Name)
					printTree(cmd, &v.Tree)
				case model.ContentBuild:
					v, err := svc.Build(cmd.Context(), id)
					if err != nil {
						return err
					}
					printf(cmd, "build %s (root %s, imported %t)\n", v.ID, v.RootID, v.Imported)
					printf(cmd, "  name: %s\n", v.Build.Name)
					printf(cmd, "  loadout: %s\n", v.LoadoutName)
					printf(cmd, "  assigned: %d nodes\n", len(v.Build.AssignedSkills))
					printTree(cmd, &v.Tree)
				}
				return nil
			})
		},
	}
}

func printTree(cmd *cobra.Command, v *content.TreeView) {
	printf(cmd, "tree %s (root %s, imported %t)\n", v.ID, v.RootID, v.Imported)
	printf(cmd, "  name: %s\n", v.Tree.Name)
	printf(cmd, "  talents: %d class, %d spec\n", len(v.Tree.ClassTalents), len(v.Tree.SpecTalents))
}

func (a *app) newImportCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "import <tree|loadout|build> <source-id>",
		Short: "Import content into a workspace by reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := model.ParseContentType(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *content.Service) error {
				id, err := svc.Import(cmd.Context(), user, typ, model.ContentID(args[1]))
				if err != nil {
					return err
				}
				printf(cmd, "%s\n", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "workspace owner")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (a *app) newCopyCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "copy <tree|loadout|build> <id>",
		Short: "Snapshot resolved content into a new record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := model.ParseContentType(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *content.Service) error {
				id, err := svc.Copy(cmd.Context(), user, typ, model.ContentID(args[1]))
				if err != nil {
					return err
				}
				printf(cmd, "%s\n", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "workspace owner")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (a *app) newDeleteCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "delete <tree|loadout|build> <id>",
		Short: "Delete a record; stubs importing it are left dangling",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := model.ParseContentType(args[0])
			if err != nil {
				return err
			}
			return a.withService(cmd.Context(), func(svc *content.Service) error {
				return svc.Delete(cmd.Context(), user, typ, model.ContentID(args[1]))
			})
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "workspace owner")
	return cmd
}

func (a *app) newWorkspaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workspace <user>",
		Short: "List a user's workspace with resolved names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd.Context(), func(svc *content.Service) error {
				entries, err := svc.Workspace(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TYPE\tID\tNAME\tIMPORTED\tTREE\tLOADOUT")
				for _, e := range entries {
					name := e.Name
					if e.Err != nil {
						name = "<unresolvable: " + e.Err.Error() + ">"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
						strings.ToLower(string(e.Item.Type)), e.Item.ID, name, e.Imported, e.TreeName, e.LoadoutName)
				}
				return tw.Flush()
			})
		},
	}
}

func (a *app) newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <presets-file>",
		Short: "Parse a presets file and summarize every tree line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			trees, err := codec.ReadPresets(f)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tKIND\tNAME\tTALENTS\tVALID")
			for _, t := range trees {
				kind := "class"
				if t.Kind == model.SpecTree {
					kind = "spec"
				}
				valid := "ok"
				if err := t.Validate(); err != nil {
					valid = err.Error()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", t.Key, kind, t.Name, len(t.Talents), valid)
			}
			return tw.Flush()
		},
	}
}

func (a *app) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := backend.Open(cmd.Context(), a.cfg.Database)
			if err != nil {
				return err
			}
			b.Close()
			printf(cmd, "migrated %s database\n", b.Driver)
			return nil
		},
	}
}
