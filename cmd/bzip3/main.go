// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"cloudeng.io/errors"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	progressbar "github.com/schollz/progressbar/v2"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/cosnicolaou/bzip3"
)

type flags struct {
	encode  bool
	decode  bool
	test    bool
	stdio   bool
	force   bool
	blockMB int
	workers int
	verbose bool
}

func init() {
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func main() {
	fl := &flags{}
	root := &cobra.Command{
		Use:   "bzip3 [flags] [file...]",
		Short: "compress or decompress files using the bzip3 algorithm",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), fl, args)
		},
	}
	root.Flags().BoolVarP(&fl.encode, "encode", "e", false, "encode (compress)")
	root.Flags().BoolVarP(&fl.decode, "decode", "d", false, "decode (decompress)")
	root.Flags().BoolVarP(&fl.test, "test", "t", false, "test: decode without writing output")
	root.Flags().BoolVarP(&fl.stdio, "stdio", "c", false, "force reading from stdin / writing to stdout")
	root.Flags().BoolVarP(&fl.force, "force", "f", false, "force overwrite of output files")
	root.Flags().IntVarP(&fl.blockMB, "block-size", "b", 16, "block size in MiB (1-511)")
	root.Flags().IntVarP(&fl.workers, "workers", "j", runtime.GOMAXPROCS(-1), "parallel workers (1-64)")
	root.Flags().BoolVarP(&fl.verbose, "verbose", "v", false, "verbose trace output")

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "bzip3:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, fl *flags, args []string) error {
	if fl.blockMB < 1 || fl.blockMB > 511 {
		return fmt.Errorf("block size must be between 1 and 511 MiB")
	}
	if fl.workers < 1 || fl.workers > 64 {
		return fmt.Errorf("workers must be between 1 and 64")
	}
	blockSize := fl.blockMB * 1 << 20
	if blockSize < bzip3.MinBlockSize {
		blockSize = bzip3.MinBlockSize
	}

	opts := []bzip3.DispatchOption{
		bzip3.WithConcurrency(fl.workers),
		bzip3.WithVerbose(fl.verbose),
	}

	switch {
	case fl.decode || fl.test:
		return decodeFiles(ctx, fl, blockSize, opts, args)
	case fl.encode:
		return encodeFiles(ctx, fl, blockSize, opts, args)
	default:
		return fmt.Errorf("one of -e or -d/-t must be given")
	}
}

func progressBar(ctx context.Context, w io.Writer, ch <-chan bzip3.Progress, total int64) {
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetBytes64(total),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetPredictTime(true))
	for {
		select {
		case p, ok := <-ch:
			if !ok {
				return
			}
			bar.Add(p.Compressed)
		case <-ctx.Done():
			return
		}
	}
}

func openInput(ctx context.Context, name string, stdio bool) (io.ReadCloser, int64, error) {
	if stdio || name == "-" || name == "" {
		return io.NopCloser(os.Stdin), 0, nil
	}
	info, err := file.Stat(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	f, err := file.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	return readCloserFunc{f.Reader(ctx), func() error { return f.Close(ctx) }}, info.Size(), nil
}

func createOutput(ctx context.Context, name string, stdio, force bool) (io.WriteCloser, error) {
	if stdio || name == "-" || name == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	if !force {
		if _, err := file.Stat(ctx, name); err == nil {
			return nil, fmt.Errorf("%s already exists, use -f to overwrite", name)
		}
	}
	f, err := file.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return writeCloserFunc{f.Writer(ctx), func() error { return f.Close(ctx) }}, nil
}

type readCloserFunc struct {
	io.Reader
	close func() error
}

func (r readCloserFunc) Close() error { return r.close() }

type writeCloserFunc struct {
	io.Writer
	close func() error
}

func (w writeCloserFunc) Close() error { return w.close() }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func encodeFiles(ctx context.Context, fl *flags, blockSize int, opts []bzip3.DispatchOption, args []string) error {
	if len(args) == 0 {
		args = []string{""}
	}
	errs := &errors.M{}
	for _, in := range args {
		errs.Append(encodeOne(ctx, fl, blockSize, opts, in))
	}
	return errs.Err()
}

func encodeOne(ctx context.Context, fl *flags, blockSize int, opts []bzip3.DispatchOption, in string) error {
	rd, size, err := openInput(ctx, in, fl.stdio || in == "")
	if err != nil {
		return err
	}
	defer rd.Close()

	outName := in
	if in != "" {
		outName = in + ".bz3"
	}
	wr, err := createOutput(ctx, outName, fl.stdio || in == "", fl.force)
	if err != nil {
		return err
	}
	defer wr.Close()

	var progressCh chan bzip3.Progress
	if !fl.stdio && in != "" && size > 0 && terminal.IsTerminal(int(os.Stderr.Fd())) {
		progressCh = make(chan bzip3.Progress, fl.workers)
		go progressBar(ctx, os.Stderr, progressCh, size)
		opts = append(opts, bzip3.WithProgress(progressCh))
	}

	w, err := bzip3.NewWriter(wr, blockSize, opts...)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, rd)
	if progressCh != nil {
		close(progressCh)
	}
	if err != nil {
		return err
	}
	return w.Close()
}

func decodeFiles(ctx context.Context, fl *flags, blockSize int, opts []bzip3.DispatchOption, args []string) error {
	if len(args) == 0 {
		args = []string{""}
	}
	errs := &errors.M{}
	for _, in := range args {
		errs.Append(decodeOne(ctx, fl, opts, in))
	}
	return errs.Err()
}

func decodeOne(ctx context.Context, fl *flags, opts []bzip3.DispatchOption, in string) error {
	rd, _, err := openInput(ctx, in, fl.stdio || in == "")
	if err != nil {
		return err
	}
	defer rd.Close()

	r, err := bzip3.NewReader(rd, opts...)
	if err != nil {
		return err
	}

	if fl.test {
		_, err := io.Copy(discard{}, r)
		return err
	}

	outName := trimBZ3Suffix(in)
	wr, err := createOutput(ctx, outName, fl.stdio || in == "", fl.force)
	if err != nil {
		return err
	}
	defer wr.Close()

	_, err = io.Copy(wr, r)
	return err
}

func trimBZ3Suffix(name string) string {
	const suffix = ".bz3"
	if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
		return name[:len(name)-len(suffix)]
	}
	return name
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
