/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/notargets/gomesh/InputDeck"
	"github.com/notargets/gomesh/geometry"
)

type ConvertModel struct {
	InputFile   string
	OutputDir   string
	UseSetNames bool
	Overwrite   bool
	Verbose     bool
	Profile     bool
}

// ConvertCmd represents the convert command
var ConvertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an input file's geometry to a VTU visualization file",
	Long: `
Converts the geometry described by a YAML simulation input file into a
visualization-ready VTU file, reading a referenced Exodus II or VTU mesh
or the input file's inline element sections.

gomesh convert -F input.yaml -o outdir`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		cm := &ConvertModel{}
		if cm.InputFile, err = cmd.Flags().GetString("inputFile"); err != nil {
			panic(err)
		}
		cm.OutputDir, _ = cmd.Flags().GetString("outputDir")
		cm.UseSetNames, _ = cmd.Flags().GetBool("useSetNames")
		cm.Overwrite, _ = cmd.Flags().GetBool("overwrite")
		cm.Verbose, _ = cmd.Flags().GetBool("verbose")
		cm.Profile, _ = cmd.Flags().GetBool("profile")
		if len(cm.InputFile) == 0 {
			err = fmt.Errorf("must supply an input file (-F, --inputFile) in YAML format")
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if cm.Profile {
			defer profile.Start(profile.CPUProfile).Stop()
		}
		RunConvert(cm)
	},
}

func init() {
	rootCmd.AddCommand(ConvertCmd)
	ConvertCmd.Flags().StringP("inputFile", "F", "", "input file in YAML format")
	ConvertCmd.Flags().StringP("outputDir", "o", "", "directory for the output VTU file (default: input file's directory)")
	ConvertCmd.Flags().Bool("useSetNames", false, "key mesh sets by their stored names instead of ordinals")
	ConvertCmd.Flags().Bool("overwrite", true, "replace an existing output file")
	ConvertCmd.Flags().Bool("profile", false, "generate a runtime profile of the conversion")
}

func RunConvert(cm *ConvertModel) {
	dk, err := InputDeck.ReadDeck(cm.InputFile, cm.Verbose)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	outDir := cm.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(cm.InputFile)
	}
	stageGeometryFile(dk, outDir, cm.Verbose)

	p := geometry.NewPipeline(outDir, cm.Verbose)
	p.UseSetNames = cm.UseSetNames
	p.Overwrite = cm.Overwrite
	vtuPath := p.Convert(dk)
	if vtuPath == "" {
		fmt.Printf("conversion failed, no geometry available\n")
		os.Exit(1)
	}
	fmt.Printf("%s\n", vtuPath)
}

// stageGeometryFile copies a referenced mesh file into the output
// directory when it is not already there; the pipeline resolves
// relative references against its scratch directory
func stageGeometryFile(dk *InputDeck.Deck, outDir string, verbose bool) {
	file, ok := dk.GeometryFile()
	if !ok || filepath.IsAbs(file) {
		return
	}
	src := filepath.Join(filepath.Dir(dk.Path), file)
	dst := filepath.Join(outDir, filepath.Base(file))
	if src == dst {
		return
	}
	if _, err := os.Stat(dst); err == nil {
		return
	}
	if err := copyFile(src, dst); err != nil {
		fmt.Printf("error: unable to stage geometry file: %s\n", err.Error())
		os.Exit(1)
	}
	if verbose {
		fmt.Printf("Staged geometry file [%s] to [%s]\n", src, dst)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
