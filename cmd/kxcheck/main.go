// Command kxcheck loads a Mach-O 64 kernel extension and prints a summary of
// its header, last segment address, and UUID (and, with -dump, every load
// command and segment), exercising the macho package the way a
// bootloader-side kext patcher would before touching anything.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chinnason/OpenCorePkg"
)

func main() {
	dump := flag.Bool("dump", false, "print the full load-command dump")
	class := flag.String("smcp", "", "resolve a class's vtable/metaclass symbols via its SMCP name")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: kxcheck [-dump] [-smcp name] <kext>")
	}

	buf, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("reading %s: %v", flag.Arg(0), err)
	}

	ctx, err := macho.NewContext(buf)
	if err != nil {
		log.Fatalf("parsing %s: %v", flag.Arg(0), err)
	}

	hdr := ctx.MachHeader()
	fmt.Printf("%s: %s %s, %d load commands, last address %#x\n",
		flag.Arg(0), hdr.CPU, hdr.Type, hdr.NCommands, ctx.LastAddress())

	if u := ctx.UUID(); u != nil {
		fmt.Printf("uuid: %s\n", u)
	}

	if *class != "" {
		printClassLinkage(ctx, *class)
	}

	if *dump {
		fmt.Print(ctx.String())
	}
}

func printClassLinkage(ctx *macho.Context, smcpName string) {
	smcp := ctx.LocalDefinedSymbolByName(smcpName)
	if smcp == nil {
		fmt.Printf("smcp %s: not found\n", smcpName)
		return
	}
	if mcp := ctx.MetaclassSymbolFromSMCP(smcp); mcp != nil {
		if name, ok := ctx.SymbolName(mcp); ok {
			fmt.Printf("metaclass: %s\n", name)
		}
	}
	vtable, metaVTable, ok := ctx.VTableSymbolsFromSMCP(smcp)
	if !ok {
		fmt.Println("vtable symbols: unresolved")
		return
	}
	vtName, _ := ctx.SymbolName(vtable)
	mvtName, _ := ctx.SymbolName(metaVTable)
	fmt.Printf("vtable: %s\nmeta vtable: %s\n", vtName, mvtName)
}
