package veml7700

// Register addresses
const (
	ALSConf     = 0x00
	ALSHigh     = 0x01
	ALSLow      = 0x02
	PowerSaving = 0x03
	ALS         = 0x04
	White       = 0x05
	ALSInt      = 0x06
	RegID       = 0x07
)

// Device constants
const (
	Addr     = 0x10
	DeviceID = 0x81
)

// ALS gain
const (
	Gain1   uint16 = 0b00 << 11
	Gain2   uint16 = 0b01 << 11
	Gain1_8 uint16 = 0b10 << 11
	Gain1_4 uint16 = 0b11 << 11

	gainMask uint16 = 0b11 << 11
)

// ALS integration time
const (
	IT25  uint16 = 0b1100 << 6
	IT50  uint16 = 0b1000 << 6
	IT100 uint16 = 0b0000 << 6
	IT200 uint16 = 0b0001 << 6
	IT400 uint16 = 0b0010 << 6
	IT800 uint16 = 0b0011 << 6

	itMask uint16 = 0b1111 << 6
)

// Shutdown control
const (
	shutdownMask uint16 = 1 << 0
	powerOn      uint16 = 0
	powerOff     uint16 = 1
)

// maxResolution is the lux per count at gain 2 and 800ms integration.
const maxResolution = 0.0036
