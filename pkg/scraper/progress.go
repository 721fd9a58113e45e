package scraper

// Progress receives per-post updates during a run
type Progress interface {
	Start(total int)
	PostStored(index, stored, failed int)
	PostDropped(index int, err error)
	Complete()
}

type nopProgress struct{}

func (nopProgress) Start(int)                {}
func (nopProgress) PostStored(int, int, int) {}
func (nopProgress) PostDropped(int, error)   {}
func (nopProgress) Complete()                {}
