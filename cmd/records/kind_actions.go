package main

import (
	"fmt"
	"strconv"

	"github.com/kjk/records/cli"
	"github.com/kjk/records/kinds"
	"github.com/kjk/records/recordstore"
)

func vehicleActions(s *recordstore.Store[kinds.Vehicle]) []cli.Action {
	rentalCost := func(p *cli.Prompt) error {
		cli.PrintRecords(p, s, s.List())
		idx, err := p.Position("Number of the vehicle: ")
		if err != nil {
			return err
		}
		days, err := p.Int("Number of days: ")
		if err != nil {
			return err
		}
		cost, err := kinds.RentalCost(s, idx, days)
		if err != nil {
			return err
		}
		rec, _ := s.At(idx)
		p.Printf("Renting %s for %d days costs %.2f\n", rec.Value.String(), days, cost)
		return nil
	}
	return []cli.Action{
		{Name: "Rental cost", Run: rentalCost},
	}
}

func bookActions(s *recordstore.Store[kinds.Book]) []cli.Action {
	borrow := func(p *cli.Prompt) error {
		title, err := p.Line("Title: ")
		if err != nil {
			return err
		}
		rec, err := kinds.Borrow(s, title)
		if err != nil {
			return err
		}
		p.Printf("Borrowed '%s', %d copies left.\n", rec.Value.Title, rec.Value.Copies)
		return nil
	}
	giveBack := func(p *cli.Prompt) error {
		title, err := p.Line("Title: ")
		if err != nil {
			return err
		}
		rec, err := kinds.Return(s, title)
		if err != nil {
			return err
		}
		p.Printf("Returned '%s', %d copies available.\n", rec.Value.Title, rec.Value.Copies)
		return nil
	}
	available := func(p *cli.Prompt) error {
		cli.PrintRecords(p, s, kinds.Available(s))
		return nil
	}
	return []cli.Action{
		{Name: "Borrow", Run: borrow},
		{Name: "Return", Run: giveBack},
		{Name: "Available", Run: available},
	}
}

func emailActions(s *recordstore.Store[kinds.Email]) []cli.Action {
	read := func(p *cli.Prompt) error {
		cli.PrintRecords(p, s, s.List())
		idx, err := p.Position("Number of the email to read: ")
		if err != nil {
			return err
		}
		rec, err := kinds.MarkRead(s, idx)
		if err != nil {
			return err
		}
		e := rec.Value
		p.Printf("From:    %s\nSubject: %s\n\n%s\n", e.Address, e.Subject, e.Content)
		return nil
	}
	unread := func(p *cli.Prompt) error {
		cli.PrintRecords(p, s, kinds.Unread(s))
		return nil
	}
	stats := func(p *cli.Prompt) error {
		st := kinds.Stats(s)
		rows := [][]string{
			{"Total", strconv.Itoa(st.Total)},
			{"Read", strconv.Itoa(st.Read)},
			{"Unread", strconv.Itoa(st.Unread)},
		}
		p.Printf("%s\n", cli.RenderTable([]string{"Emails", "Count"}, rows))
		return nil
	}
	return []cli.Action{
		{Name: "Read email", Run: read},
		{Name: "Unread emails", Run: unread},
		{Name: "Inbox stats", Run: stats},
	}
}

func deviceActions(s *recordstore.Store[kinds.Device]) []cli.Action {
	power := func(on bool) func(p *cli.Prompt) error {
		return func(p *cli.Prompt) error {
			cli.PrintRecords(p, s, s.List())
			idx, err := p.Position("Number of the device: ")
			if err != nil {
				return err
			}
			fn := kinds.TurnOff
			if on {
				fn = kinds.TurnOn
			}
			rec, err := fn(s, idx)
			if err != nil {
				return err
			}
			state := "off"
			if rec.Value.Powered {
				state = "on"
			}
			p.Printf("%s is %s.\n", rec.Value.Name, state)
			return nil
		}
	}
	consumption := func(p *cli.Prompt) error {
		p.Printf("Powered devices use %d W.\n", kinds.TotalConsumption(s))
		return nil
	}
	convert := func(p *cli.Prompt) error {
		str, err := p.Line("Temperature in Celsius: ")
		if err != nil {
			return err
		}
		c, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("%w: '%s' is not a number", cli.ErrBadInput, str)
		}
		p.Printf("%.1f °C is %.1f °F\n", c, kinds.CelsiusToFahrenheit(c))
		return nil
	}
	return []cli.Action{
		{Name: "Turn on", Run: power(true)},
		{Name: "Turn off", Run: power(false)},
		{Name: "Total consumption", Run: consumption},
		{Name: "Celsius to Fahrenheit", Run: convert},
	}
}
