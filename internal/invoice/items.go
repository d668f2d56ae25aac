package invoice

import "strconv"

// AddItem appends a blank line item with a fresh id and returns it.
func (d *Document) AddItem() LineItem {
	d.LastItemID++
	item := newLineItem(strconv.FormatUint(d.LastItemID, 10))
	d.Items = append(d.Items, item)
	return item
}

// RemoveItem deletes the item with the given id. The sole remaining item is
// never removed; in that case RemoveItem reports false and leaves the document
// untouched.
func (d *Document) RemoveItem(id string) (bool, error) {
	idx := d.indexOf(id)
	if idx < 0 {
		return false, ErrItemNotFound
	}
	if len(d.Items) <= 1 {
		return false, nil
	}
	d.Items = append(d.Items[:idx], d.Items[idx+1:]...)
	return true, nil
}

// UpdateItem applies change to the item with the given id and returns the
// updated item. Item order is preserved.
func (d *Document) UpdateItem(id string, change ItemChange) (LineItem, error) {
	idx := d.indexOf(id)
	if idx < 0 {
		return LineItem{}, ErrItemNotFound
	}
	change.applyTo(&d.Items[idx])
	return d.Items[idx], nil
}

// Item looks up an item by id.
func (d *Document) Item(id string) (LineItem, bool) {
	idx := d.indexOf(id)
	if idx < 0 {
		return LineItem{}, false
	}
	return d.Items[idx], true
}

// CanRemoveItems reports whether the remove control should be offered.
func (d *Document) CanRemoveItems() bool {
	return len(d.Items) > 1
}

func (d *Document) indexOf(id string) int {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return i
		}
	}
	return -1
}
