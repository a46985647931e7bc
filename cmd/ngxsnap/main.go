// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/ngxtrack/utility/snapshot"
)

var (
	srcFile = flag.String("f", "", "Snapshot file to read")
	list    = flag.Bool("l", false, "List the entries of the snapshot")
	extract = flag.String("e", "", "Print the entry given")
)

func main() {
	flag.Parse()

	if *srcFile == "" || (!*list && *extract == "") {
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *list && *extract != "" {
		log.Fatal(errors.New("only one operation at a time"))
	}

	f, err := snapshot.OpenFile(*srcFile)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if *list {
		header := f.Header()
		fmt.Printf("author %s, created %s\n", header.Author, header.Created.Format("2006-01-02 15:04:05"))
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, e := range header.Index {
			fmt.Fprintf(w, "%s\t%d\t%d\n", e.Name, e.Size, e.CompressedSize)
		}
		w.Flush()
		return
	}

	data, err := f.ReadAll(*extract)
	if err != nil {
		f.Close()
		log.Fatal(err)
	}
	os.Stdout.Write(data)
}
