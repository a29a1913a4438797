package famicore

// Controller button indices in shift order.
const (
	ButtonA = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller models a standard pad behind the $4016/$4017 latch. While
// strobe is high the shift register keeps reloading, so reads always
// return the A button. Dropping strobe freezes the snapshot and each
// read shifts out the next button.
type Controller struct {
	buttons [8]bool
	strobe  bool
	index   uint8
}

func NewController() *Controller {
	return &Controller{}
}

func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = buttons
}

func (c *Controller) Write(data uint8) {
	c.strobe = data&0x01 != 0
	if c.strobe {
		c.index = 0
	}
}

func (c *Controller) Read() uint8 {
	if c.strobe {
		c.index = 0
	}

	// Past the eighth read official pads report pressed.
	if c.index > 7 {
		return 0x01
	}

	var value uint8
	if c.buttons[c.index] {
		value = 0x01
	}
	if !c.strobe {
		c.index++
	}
	return value
}

func (c *Controller) reset() {
	c.strobe = false
	c.index = 0
}
