// Package wasmtest holds hand-encoded Wasm binaries for tests.
package wasmtest

var header = []byte{
	0x00, 0x61, 0x73, 0x6d, // Magic number: \0asm
	0x01, 0x00, 0x00, 0x00, // Version: 1
}

func module(sections ...[]byte) []byte {
	out := append([]byte{}, header...)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

// Empty is a valid module with no exports.
func Empty() []byte {
	return module()
}

// Add exports add(i32, i32) -> i32 returning the wrapped sum.
func Add() []byte {
	return module(
		// type 0: (i32 i32) -> i32
		[]byte{0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f},
		// func 0: type 0
		[]byte{0x03, 0x02, 0x01, 0x00},
		// export "add" = func 0
		[]byte{0x07, 0x07, 0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00},
		// local.get 0 local.get 1 i32.add
		[]byte{0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b},
	)
}

// AddI64 exports add(i64, i64) -> i64.
func AddI64() []byte {
	return module(
		[]byte{0x01, 0x07, 0x01, 0x60, 0x02, 0x7e, 0x7e, 0x01, 0x7e},
		[]byte{0x03, 0x02, 0x01, 0x00},
		[]byte{0x07, 0x07, 0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00},
		[]byte{0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x7c, 0x0b}, // i64.add
	)
}

// Sum is Add with the export named "sum".
func Sum() []byte {
	return module(
		[]byte{0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f},
		[]byte{0x03, 0x02, 0x01, 0x00},
		[]byte{0x07, 0x07, 0x01, 0x03, 's', 'u', 'm', 0x00, 0x00},
		[]byte{0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b},
	)
}

// Trap exports add(i32, i32) -> i32 whose body is unreachable.
func Trap() []byte {
	return module(
		[]byte{0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f},
		[]byte{0x03, 0x02, 0x01, 0x00},
		[]byte{0x07, 0x07, 0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00},
		[]byte{0x0a, 0x05, 0x01, 0x03, 0x00, 0x00, 0x0b},
	)
}

// Spin exports add(i32, i32) -> i32 that never returns.
func Spin() []byte {
	return module(
		[]byte{0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f},
		[]byte{0x03, 0x02, 0x01, 0x00},
		[]byte{0x07, 0x07, 0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00},
		// loop br 0 end i32.const 0
		[]byte{0x0a, 0x0b, 0x01, 0x09, 0x00, 0x03, 0x40, 0x0c, 0x00, 0x0b, 0x41, 0x00, 0x0b},
	)
}

// Greet imports host.log_message and exports greet() which logs "hello"
// at info level from a data segment at offset 0.
func Greet() []byte {
	return module(
		// types: 0 = (i32 i32 i32) -> (), 1 = () -> ()
		[]byte{0x01, 0x0a, 0x02, 0x60, 0x03, 0x7f, 0x7f, 0x7f, 0x00, 0x60, 0x00, 0x00},
		// import host.log_message as func 0
		append(append([]byte{0x02, 0x14, 0x01, 0x04, 'h', 'o', 's', 't', 0x0b},
			[]byte("log_message")...), 0x00, 0x00),
		[]byte{0x03, 0x02, 0x01, 0x01},       // func 1: type 1
		[]byte{0x05, 0x03, 0x01, 0x00, 0x01}, // memory: 1 page
		[]byte{0x07, 0x09, 0x01, 0x05, 'g', 'r', 'e', 'e', 't', 0x00, 0x01},
		// i32.const 1 i32.const 0 i32.const 5 call 0
		[]byte{0x0a, 0x0c, 0x01, 0x0a, 0x00, 0x41, 0x01, 0x41, 0x00, 0x41, 0x05, 0x10, 0x00, 0x0b},
		[]byte{0x0b, 0x0b, 0x01, 0x00, 0x41, 0x00, 0x0b, 0x05, 'h', 'e', 'l', 'l', 'o'},
	)
}
