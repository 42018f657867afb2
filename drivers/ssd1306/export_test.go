package ssd1306

func Latched(dev frameDevice, bus *Latch) Panel { return latched(dev, bus) }
