package component

import (
	"fmt"
	"strings"
)

// Class is a character's combat class.
type Class uint8

const (
	ClassWarrior Class = iota
	ClassRanger
	ClassMage
	ClassRogue
)

var classNames = [...]string{"warrior", "ranger", "mage", "rogue"}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", c)
}

func ParseClass(s string) (Class, error) {
	for i, name := range classNames {
		if strings.EqualFold(s, name) {
			return Class(i), nil
		}
	}
	return 0, fmt.Errorf("unknown class %q", s)
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Class) UnmarshalText(b []byte) error {
	v, err := ParseClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Character stores progression data for an entity.
// Pure data; mutations happen in systems.
type Character struct {
	Name       string `yaml:"name"`
	Class      Class  `yaml:"class"`
	Level      int    `yaml:"level"`
	Experience int64  `yaml:"experience"`
}
