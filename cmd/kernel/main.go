// Copyright 2026 The Paravita Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command kernel is a minimal Paravita host: it reads a stream of
// wire-encoded Operations and runs them against a single Process,
// printing DebugOut output to stdout. It stands in for the embedding
// kernel a real deployment would drive Process.RunOp from directly;
// unlike that kernel, it reads its Operation stream from a file or stdin
// rather than fetching from a resident program image, since this core has
// no notion of one (vm.Process takes one Operation at a time).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/moonheart08/paravita/vm"
)

func main() {
	var (
		budget = flag.Int("budget", 0, "allocator byte budget, 0 for unlimited")
		stack  = flag.Int("stack", 0, "initial operand stack capacity, 0 for default")
	)
	flag.Parse()

	in, err := openInput(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer in.Close()

	if err := run(in, os.Stdout, *budget, *stack); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	return f, errors.Wrapf(err, "open %s", path)
}

func run(src io.Reader, out io.Writer, budget, stackCap int) error {
	var opts []vm.Option
	if budget > 0 {
		opts = append(opts, vm.WithAllocator(vm.NewBudgetAllocator(budget)))
	}
	if stackCap > 0 {
		opts = append(opts, vm.WithStackCapacity(stackCap))
	}
	opts = append(opts, vm.WithDebugSink(out))

	p, err := vm.NewProcess(vm.NewPid(vm.Pid{}), opts...)
	if err != nil {
		return errors.Wrap(err, "new process")
	}

	r := bufio.NewReader(src)
	for n := 0; ; n++ {
		op, err := vm.DecodeOperation(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "decode operation %d", n)
		}
		if err := p.RunOp(op); err != nil {
			return errors.Wrapf(err, "run operation %d (%s)", n, op.Op)
		}
	}
}
