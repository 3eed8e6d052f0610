package script

// Op is one parsed script command.
type Op interface {
	isOp()
}

// OpArena registers [Addr, Addr+Size) with the pool.
type OpArena struct {
	Addr uint64
	Size uint64
}

// OpAlloc allocates Size bytes and binds the result to Name.
type OpAlloc struct {
	Name string
	Size uint64
}

// OpFree releases the block bound to Name, or the nil address.
type OpFree struct {
	Name string
}

// OpExpect requires two names to be bound to the same address.
type OpExpect struct {
	A, B string
}

// OpDump prints the free list.
type OpDump struct{}

// OpVerify checks the free-list invariants.
type OpVerify struct{}

func (OpArena) isOp()  {}
func (OpAlloc) isOp()  {}
func (OpFree) isOp()   {}
func (OpExpect) isOp() {}
func (OpDump) isOp()   {}
func (OpVerify) isOp() {}

// Step is an Op with the line it came from.
type Step struct {
	Line int
	Op   Op
}
